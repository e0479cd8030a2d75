package grid

import "testing"

func TestWrap_PositiveAndNegative(t *testing.T) {
	g := New(20, 18)
	cases := []struct {
		in, want Cell
	}{
		{Cell{21, 5}, Cell{1, 5}},
		{Cell{5, 19}, Cell{5, 1}},
		{Cell{-1, 5}, Cell{19, 5}},
		{Cell{5, -1}, Cell{5, 17}},
		{Cell{-21, -19}, Cell{19, 17}},
		{Cell{40, 36}, Cell{0, 0}},
	}
	for _, c := range cases {
		if got := g.Wrap(c.in); got != c.want {
			t.Errorf("Wrap(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNeighbors_FixedOrderAndWrapped(t *testing.T) {
	g := New(10, 10)
	got := g.Neighbors(Cell{0, 9})
	want := [4]Cell{{1, 9}, {9, 9}, {0, 0}, {0, 8}}
	if got != want {
		t.Fatalf("Neighbors((0,9)) = %v, want %v", got, want)
	}
}

func TestWrapDistance_TakesShorterSpan(t *testing.T) {
	g := New(32, 32)
	cases := []struct {
		a, b Cell
		want int
	}{
		{Cell{0, 0}, Cell{0, 0}, 0},
		{Cell{0, 0}, Cell{31, 0}, 1},
		{Cell{0, 0}, Cell{16, 16}, 32},
		{Cell{2, 3}, Cell{5, 30}, 3 + 5},
		{Cell{30, 1}, Cell{1, 30}, 3 + 3},
	}
	for _, c := range cases {
		if got := g.WrapDistance(c.a, c.b); got != c.want {
			t.Errorf("WrapDistance(%v,%v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := g.WrapDistance(c.b, c.a); got != c.want {
			t.Errorf("WrapDistance not symmetric for %v,%v: %d", c.a, c.b, got)
		}
	}
}

func TestDelta_CorrectsAcrossSeam(t *testing.T) {
	g := New(32, 24)
	dx, dy := g.Delta(Cell{0, 5}, Cell{31, 5})
	if dx != -1 || dy != 0 {
		t.Fatalf("expected (-1,0) across the left seam, got (%d,%d)", dx, dy)
	}
	dx, dy = g.Delta(Cell{30, 23}, Cell{1, 0})
	if dx != 3 || dy != 1 {
		t.Fatalf("expected (3,1) across both seams, got (%d,%d)", dx, dy)
	}
	// Exactly half the width keeps the raw sign.
	dx, _ = g.Delta(Cell{0, 0}, Cell{16, 0})
	if dx != 16 {
		t.Fatalf("expected raw +16 at the half-width boundary, got %d", dx)
	}
	dx, _ = g.Delta(Cell{16, 0}, Cell{0, 0})
	if dx != -16 {
		t.Fatalf("expected raw -16 at the half-width boundary, got %d", dx)
	}
}

func TestIndex_RoundTrip(t *testing.T) {
	g := New(7, 5)
	for i := 0; i < g.Size(); i++ {
		c := g.CellAt(i)
		if !g.Contains(c) {
			t.Fatalf("CellAt(%d) = %v outside grid", i, c)
		}
		if got := g.Index(c); got != i {
			t.Fatalf("Index(CellAt(%d)) = %d", i, got)
		}
	}
	if g.Index(Cell{-1, -1}) != g.Index(Cell{6, 4}) {
		t.Fatal("Index should wrap its input")
	}
}

func TestStep_WrapsAndFollowsScreenAxes(t *testing.T) {
	g := New(4, 4)
	if got := g.Step(Cell{0, 0}, Up); got != (Cell{0, 3}) {
		t.Errorf("Up from (0,0) = %v", got)
	}
	if got := g.Step(Cell{3, 1}, Right); got != (Cell{0, 1}) {
		t.Errorf("Right from (3,1) = %v", got)
	}
	if got := g.Step(Cell{2, 2}, None); got != (Cell{2, 2}) {
		t.Errorf("None should not move, got %v", got)
	}
}

func TestAdjacent(t *testing.T) {
	g := New(8, 8)
	if !g.Adjacent(Cell{0, 0}, Cell{7, 0}) {
		t.Error("cells across the seam should be adjacent")
	}
	if g.Adjacent(Cell{0, 0}, Cell{1, 1}) {
		t.Error("diagonal cells are not adjacent on a 4-connected grid")
	}
}

func TestDirection_Opposite(t *testing.T) {
	pairs := map[Direction]Direction{Up: Down, Down: Up, Left: Right, Right: Left, None: None}
	for d, want := range pairs {
		if got := d.Opposite(); got != want {
			t.Errorf("%s.Opposite() = %s, want %s", d, got, want)
		}
	}
}
