package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

func requireContiguous(t *testing.T, g grid.Grid, start grid.Cell, r Route) {
	t.Helper()
	prev := start
	for i, c := range r {
		require.Truef(t, g.Adjacent(prev, c), "step %d: %v is not adjacent to %v", i, c, prev)
		prev = c
	}
}

func TestFindRoute_OptimalOnOpenTorus(t *testing.T) {
	g := grid.New(32, 24)
	empty := NewOccupancy(g)
	pairs := [][2]grid.Cell{
		{{X: 0, Y: 0}, {X: 5, Y: 7}},
		{{X: 2, Y: 3}, {X: 30, Y: 20}},
		{{X: 16, Y: 12}, {X: 0, Y: 0}},
		{{X: 31, Y: 23}, {X: 0, Y: 0}},
		{{X: 10, Y: 10}, {X: 26, Y: 10}},
	}
	for _, p := range pairs {
		r := FindRoute(g, p[0], p[1], empty)
		require.Lenf(t, r, g.WrapDistance(p[0], p[1]), "route %v -> %v", p[0], p[1])
		goal, ok := r.Goal()
		require.True(t, ok)
		assert.Equal(t, p[1], goal)
		requireContiguous(t, g, p[0], r)
	}
}

func TestFindRoute_TakesWrapShortcut(t *testing.T) {
	g := grid.New(32, 32)
	r := FindRoute(g, grid.Cell{X: 0, Y: 9}, grid.Cell{X: 31, Y: 9}, NewOccupancy(g))
	require.Equal(t, Route{{X: 31, Y: 9}}, r)
}

func TestFindRoute_GoalCellAlwaysEnterable(t *testing.T) {
	g := grid.New(16, 16)
	goal := grid.Cell{X: 9, Y: 4}
	occ := OccupancyFrom(g, []grid.Cell{goal})
	r := FindRoute(g, grid.Cell{X: 4, Y: 4}, goal, occ)
	require.Len(t, r, 5)
	last, _ := r.Goal()
	assert.Equal(t, goal, last)
}

func TestFindRoute_StartCellIgnoredByOccupancy(t *testing.T) {
	g := grid.New(8, 8)
	start := grid.Cell{X: 1, Y: 1}
	occ := OccupancyFrom(g, []grid.Cell{start})
	r := FindRoute(g, start, grid.Cell{X: 3, Y: 1}, occ)
	assert.Len(t, r, 2)
}

func TestFindRoute_EnclosedStartReturnsEmpty(t *testing.T) {
	g := grid.New(12, 12)
	start := grid.Cell{X: 6, Y: 6}
	n := g.Neighbors(start)
	occ := OccupancyFrom(g, n[:])
	res := Search(g, start, grid.Cell{X: 0, Y: 0}, occ)
	assert.Empty(t, res.Route)
	assert.Equal(t, 1, res.Expanded, "only the start should be closed")
}

func TestFindRoute_EnclosedGoalRegionExhausts(t *testing.T) {
	g := grid.New(12, 12)
	// Ring of blocked cells around a 3x3 pocket; goal sits one cell inside
	// the ring so it is not adjacent to any open outside cell.
	var ring []grid.Cell
	for x := 3; x <= 7; x++ {
		ring = append(ring, grid.Cell{X: x, Y: 3}, grid.Cell{X: x, Y: 7})
	}
	for y := 4; y <= 6; y++ {
		ring = append(ring, grid.Cell{X: 3, Y: y}, grid.Cell{X: 7, Y: y})
	}
	occ := OccupancyFrom(g, ring)
	res := Search(g, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 5, Y: 5}, occ)
	assert.Empty(t, res.Route)
	assert.Equal(t, g.Size()-len(ring)-9, res.Expanded, "every reachable outside cell is closed exactly once")
}

func TestFindRoute_DetoursAroundWallTheLongWay(t *testing.T) {
	g := grid.New(10, 10)
	var wall []grid.Cell
	for y := 0; y < 10; y++ {
		wall = append(wall, grid.Cell{X: 5, Y: y})
	}
	occ := OccupancyFrom(g, wall)
	start, goal := grid.Cell{X: 3, Y: 5}, grid.Cell{X: 7, Y: 5}
	r := FindRoute(g, start, goal, occ)
	require.Len(t, r, 6, "3 -> 2 -> 1 -> 0 -> 9 -> 8 -> 7")
	requireContiguous(t, g, start, r)
	for _, c := range r {
		assert.False(t, occ.Blocked(c), "route crosses blocked cell %v", c)
	}
}

func TestFindRoute_DeterministicForFixedInput(t *testing.T) {
	g := grid.New(20, 20)
	occ := OccupancyFrom(g, []grid.Cell{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 5}, {X: 12, Y: 3}})
	a := FindRoute(g, grid.Cell{X: 1, Y: 1}, grid.Cell{X: 15, Y: 14}, occ)
	b := FindRoute(g, grid.Cell{X: 1, Y: 1}, grid.Cell{X: 15, Y: 14}, occ)
	require.Equal(t, a, b)
}

func TestFindRoute_StartEqualsGoal(t *testing.T) {
	g := grid.New(8, 8)
	assert.Empty(t, FindRoute(g, grid.Cell{X: 2, Y: 2}, grid.Cell{X: 2, Y: 2}, NewOccupancy(g)))
}

func TestFindRoute_WrapsOutOfRangeInputs(t *testing.T) {
	g := grid.New(8, 8)
	r := FindRoute(g, grid.Cell{X: -1, Y: 0}, grid.Cell{X: 9, Y: 0}, NewOccupancy(g))
	require.Len(t, r, 2)
	last, _ := r.Goal()
	assert.Equal(t, grid.Cell{X: 1, Y: 0}, last)
}

func TestOccupancy_CloneIsIndependent(t *testing.T) {
	g := grid.New(8, 8)
	o := NewOccupancy(g)
	o.Block(grid.Cell{X: 1, Y: 1})
	c := o.Clone()
	o.Block(grid.Cell{X: 2, Y: 2})
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Blocked(grid.Cell{X: 2, Y: 2}))
	assert.Equal(t, []grid.Cell{{X: 1, Y: 1}, {X: 2, Y: 2}}, o.Cells())
}

func TestOccupancy_DuplicatesCountedOnce(t *testing.T) {
	g := grid.New(4, 4)
	o := OccupancyFrom(g, []grid.Cell{{X: 1, Y: 1}}, []grid.Cell{{X: 1, Y: 1}, {X: 5, Y: 1}})
	assert.Equal(t, 1, o.Len())
}

func TestOccupancy_ZeroValueBlocksNothing(t *testing.T) {
	var o Occupancy
	o.Block(grid.Cell{X: 1, Y: 1})
	assert.False(t, o.Blocked(grid.Cell{X: 1, Y: 1}))
	assert.Zero(t, o.Len())
}
