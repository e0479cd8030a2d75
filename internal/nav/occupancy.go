package nav

import (
	"math/bits"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

// Occupancy is a point-in-time set of blocked cells, stored as a bitset over
// the grid's row-major indices. The zero value blocks nothing.
type Occupancy struct {
	g    grid.Grid
	bits []uint64
	n    int
}

// NewOccupancy returns an empty snapshot sized for g.
func NewOccupancy(g grid.Grid) Occupancy {
	return Occupancy{g: g, bits: make([]uint64, (g.Size()+63)/64)}
}

// OccupancyFrom builds a snapshot from any number of cell lists, e.g. obstacle
// cells, the agent's own body, the rival's body and the rival's head.
func OccupancyFrom(g grid.Grid, parts ...[]grid.Cell) Occupancy {
	o := NewOccupancy(g)
	for _, part := range parts {
		for _, c := range part {
			o.Block(c)
		}
	}
	return o
}

// Block marks c as blocked.
func (o *Occupancy) Block(c grid.Cell) {
	if o.bits == nil {
		return
	}
	i := o.g.Index(c)
	w, b := i/64, uint64(1)<<(i%64)
	if o.bits[w]&b == 0 {
		o.bits[w] |= b
		o.n++
	}
}

// Blocked reports whether c is blocked.
func (o Occupancy) Blocked(c grid.Cell) bool {
	if o.bits == nil {
		return false
	}
	i := o.g.Index(c)
	return o.bits[i/64]&(uint64(1)<<(i%64)) != 0
}

// Len is the number of distinct blocked cells.
func (o Occupancy) Len() int { return o.n }

// Cells lists blocked cells in row-major order.
func (o Occupancy) Cells() []grid.Cell {
	out := make([]grid.Cell, 0, o.n)
	for w, word := range o.bits {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			out = append(out, o.g.CellAt(w*64+bit))
			word &= word - 1
		}
	}
	return out
}

// Clone returns an independent copy. Snapshots handed to the search worker
// are always clones, so the caller may keep mutating its own.
func (o Occupancy) Clone() Occupancy {
	if o.bits == nil {
		return o
	}
	cp := make([]uint64, len(o.bits))
	copy(cp, o.bits)
	return Occupancy{g: o.g, bits: cp, n: o.n}
}
