package nav

import (
	"container/heap"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

// Route is the ordered list of waypoints from the first step after the start
// up to and including the goal. An empty Route means no path was found.
type Route []grid.Cell

// Len returns the number of steps in the route.
func (r Route) Len() int { return len(r) }

// Goal returns the last waypoint.
func (r Route) Goal() (grid.Cell, bool) {
	if len(r) == 0 {
		return grid.Cell{}, false
	}
	return r[len(r)-1], true
}

// Result is a route plus search bookkeeping.
type Result struct {
	Route    Route
	Expanded int // nodes closed before termination
}

// Searcher computes a route over a fixed snapshot. Implementations must not
// retain occ after returning.
type Searcher interface {
	FindRoute(start, goal grid.Cell, occ Occupancy) Route
}

// AStar is the default Searcher.
type AStar struct {
	Grid grid.Grid
}

// FindRoute implements Searcher.
func (a AStar) FindRoute(start, goal grid.Cell, occ Occupancy) Route {
	return FindRoute(a.Grid, start, goal, occ)
}

// FindRoute runs A* on the torus and returns only the route.
func FindRoute(g grid.Grid, start, goal grid.Cell, occ Occupancy) Route {
	return Search(g, start, goal, occ).Route
}

// --- A* pathfinding ---

const (
	nodeUnseen uint8 = iota
	nodeOpen
	nodeClosed
)

// searchArena holds per-search node state indexed by grid slot. Parent links
// are slot indices, so the reconstruction chain never outlives the arena.
type searchArena struct {
	g      []int32
	parent []int32
	state  []uint8
}

func newSearchArena(size int) *searchArena {
	a := &searchArena{
		g:      make([]int32, size),
		parent: make([]int32, size),
		state:  make([]uint8, size),
	}
	for i := range a.parent {
		a.parent[i] = -1
	}
	return a
}

type openEntry struct {
	slot int32
	f, g int32
	seq  uint32
}

// openList orders by f, then lower g, then insertion order so a fixed input
// always expands in the same order.
type openList []openEntry

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	if ol[i].g != ol[j].g {
		return ol[i].g < ol[j].g
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i] }
func (ol *openList) Push(x interface{}) { *ol = append(*ol, x.(openEntry)) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	*ol = old[:len(old)-1]
	return n
}

// Search returns the shortest 4-connected route from start to goal that avoids
// blocked cells. The start cell is never treated as blocked, and the goal cell
// is always enterable even when occ marks it. Closed cells are never reopened;
// stale heap entries are skipped on pop.
func Search(g grid.Grid, start, goal grid.Cell, occ Occupancy) Result {
	start, goal = g.Wrap(start), g.Wrap(goal)
	if start == goal {
		return Result{}
	}

	arena := newSearchArena(g.Size())
	startSlot := int32(g.Index(start))
	goalSlot := int32(g.Index(goal))

	var seq uint32
	ol := &openList{}
	arena.state[startSlot] = nodeOpen
	heap.Push(ol, openEntry{slot: startSlot, f: int32(g.WrapDistance(start, goal))})

	expanded := 0
	for ol.Len() > 0 {
		cur := heap.Pop(ol).(openEntry)
		if arena.state[cur.slot] == nodeClosed || cur.g != arena.g[cur.slot] {
			continue
		}
		arena.state[cur.slot] = nodeClosed
		expanded++

		if cur.slot == goalSlot {
			return Result{Route: buildRoute(g, arena, goalSlot, startSlot), Expanded: expanded}
		}

		cell := g.CellAt(int(cur.slot))
		for _, n := range g.Neighbors(cell) {
			ns := int32(g.Index(n))
			if arena.state[ns] == nodeClosed {
				continue
			}
			if ns != goalSlot && occ.Blocked(n) {
				continue
			}
			tentative := cur.g + 1
			if arena.state[ns] == nodeOpen && tentative >= arena.g[ns] {
				continue
			}
			arena.state[ns] = nodeOpen
			arena.g[ns] = tentative
			arena.parent[ns] = cur.slot
			seq++
			heap.Push(ol, openEntry{
				slot: ns,
				f:    tentative + int32(g.WrapDistance(n, goal)),
				g:    tentative,
				seq:  seq,
			})
		}
	}
	return Result{Expanded: expanded}
}

// buildRoute walks parent links from the goal back to the start, reverses,
// and drops the start cell.
func buildRoute(g grid.Grid, arena *searchArena, goalSlot, startSlot int32) Route {
	var slots []int32
	for s := goalSlot; s != startSlot && s >= 0; s = arena.parent[s] {
		slots = append(slots, s)
	}
	route := make(Route, len(slots))
	for i, s := range slots {
		route[len(slots)-1-i] = g.CellAt(int(s))
	}
	return route
}
