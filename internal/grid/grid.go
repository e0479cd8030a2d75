// Package grid holds the toroidal coordinate space shared by the arena and
// the pathfinder. Everything here is a pure function of the grid size.
package grid

import "fmt"

// Cell is one grid coordinate.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid is a W×H torus: stepping off one edge re-enters on the opposite edge.
type Grid struct {
	W, H int
}

// New returns a grid of the given size. Non-positive sizes are clamped to 1.
func New(w, h int) Grid {
	return Grid{W: max(1, w), H: max(1, h)}
}

// Size returns the number of cells in the grid.
func (g Grid) Size() int { return g.W * g.H }

// Index maps a wrapped cell to its row-major slot in [0, W*H).
func (g Grid) Index(c Cell) int {
	c = g.Wrap(c)
	return c.Y*g.W + c.X
}

// CellAt is the inverse of Index.
func (g Grid) CellAt(idx int) Cell {
	return Cell{X: idx % g.W, Y: idx / g.W}
}

// Wrap folds any integer coordinate back onto the torus.
func (g Grid) Wrap(c Cell) Cell {
	return Cell{X: mod(c.X, g.W), Y: mod(c.Y, g.H)}
}

// Contains reports whether c is already inside [0,W)×[0,H).
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.W && c.Y < g.H
}

// Neighbors returns the four orthogonal neighbours of c in the fixed order
// +x, -x, +y, -y, each wrapped.
func (g Grid) Neighbors(c Cell) [4]Cell {
	return [4]Cell{
		g.Wrap(Cell{c.X + 1, c.Y}),
		g.Wrap(Cell{c.X - 1, c.Y}),
		g.Wrap(Cell{c.X, c.Y + 1}),
		g.Wrap(Cell{c.X, c.Y - 1}),
	}
}

// WrapDistance is the Manhattan distance on the torus: per axis the shorter
// of the direct and the wrapped span.
func (g Grid) WrapDistance(a, b Cell) int {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	return min(dx, g.W-dx) + min(dy, g.H-dy)
}

// Delta returns the signed step counts from one cell to another, corrected so
// each axis points along the shorter way round the torus. A span of exactly
// half the dimension keeps its raw sign.
func (g Grid) Delta(from, to Cell) (dx, dy int) {
	dx = to.X - from.X
	dy = to.Y - from.Y
	if dx > g.W/2 {
		dx -= g.W
	}
	if dx < -g.W/2 {
		dx += g.W
	}
	if dy > g.H/2 {
		dy -= g.H
	}
	if dy < -g.H/2 {
		dy += g.H
	}
	return dx, dy
}

// Adjacent reports whether a and b are one orthogonal step apart on the torus.
func (g Grid) Adjacent(a, b Cell) bool {
	for _, n := range g.Neighbors(a) {
		if n == g.Wrap(b) {
			return true
		}
	}
	return false
}

// Step moves c one cell in direction d and wraps the result.
func (g Grid) Step(c Cell, d Direction) Cell {
	dx, dy := d.Vector()
	return g.Wrap(Cell{c.X + dx, c.Y + dy})
}

// Center returns the middle cell, matching where the player spawns.
func (g Grid) Center() Cell {
	return Cell{X: g.W / 2, Y: g.H / 2}
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
