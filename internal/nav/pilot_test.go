package nav

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// gatedSearcher records every query and blocks inside FindRoute until
// release is called. After release it never blocks again.
type gatedSearcher struct {
	mu     sync.Mutex
	goals  []grid.Cell
	route  Route
	gate   chan struct{}
	closed sync.Once
}

func newGatedSearcher(route Route) *gatedSearcher {
	return &gatedSearcher{route: route, gate: make(chan struct{})}
}

func openSearcher(route Route) *gatedSearcher {
	s := newGatedSearcher(route)
	s.release()
	return s
}

func (s *gatedSearcher) FindRoute(_, goal grid.Cell, _ Occupancy) Route {
	s.mu.Lock()
	s.goals = append(s.goals, goal)
	s.mu.Unlock()
	<-s.gate
	return s.route
}

func (s *gatedSearcher) release() { s.closed.Do(func() { close(s.gate) }) }

func (s *gatedSearcher) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.goals)
}

func (s *gatedSearcher) goal(i int) grid.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals[i]
}

func TestPilot_ActivateThenDeactivateReturns(t *testing.T) {
	p := NewPilot(grid.New(16, 16))
	done := make(chan struct{})
	go func() {
		p.Activate()
		p.Deactivate()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("Deactivate hung with no query ever submitted")
	}
	assert.False(t, p.Active())
}

func TestPilot_LifecycleIsIdempotentAndRestartable(t *testing.T) {
	g := grid.New(16, 16)
	p := NewPilot(g)
	p.Deactivate()
	p.Activate()
	p.Activate()
	require.True(t, p.Active())
	p.Deactivate()
	p.Deactivate()
	require.False(t, p.Active())

	p.Activate()
	defer p.Deactivate()
	p.SetOrigin(grid.Cell{X: 1, Y: 1})
	p.SetGoal(grid.Cell{X: 4, Y: 1})
	require.Eventually(t, p.HasRoute, waitFor, tick)
}

func TestPilot_PublishesAStarRoute(t *testing.T) {
	g := grid.New(20, 20)
	p := NewPilot(g)
	p.Activate()
	defer p.Deactivate()

	p.SetOrigin(grid.Cell{X: 2, Y: 2})
	p.SetOccupancy(OccupancyFrom(g, []grid.Cell{{X: 3, Y: 2}}))
	p.SetGoal(grid.Cell{X: 6, Y: 2})
	require.Eventually(t, p.HasRoute, waitFor, tick)

	r, cursor := p.Route()
	assert.Equal(t, 0, cursor)
	last, _ := r.Goal()
	assert.Equal(t, grid.Cell{X: 6, Y: 2}, last)
	assert.Len(t, r, 6, "one cell detour around the blocker")
	assert.NotContains(t, r, grid.Cell{X: 3, Y: 2})
}

func TestPilot_CoalescesGoalsWhileBusy(t *testing.T) {
	s := newGatedSearcher(Route{{X: 1, Y: 0}})
	p := NewPilot(grid.New(32, 32), WithSearcher(s))
	p.Activate()
	defer p.Deactivate()

	p.SetGoal(grid.Cell{X: 0, Y: 5})
	require.Eventually(t, func() bool { return s.calls() == 1 }, waitFor, tick)

	const n = 25
	for i := 1; i <= n; i++ {
		p.SetGoal(grid.Cell{X: i, Y: 5})
	}
	s.release()

	require.Eventually(t, func() bool { return s.calls() == 2 }, waitFor, tick)
	require.Never(t, func() bool { return s.calls() > 2 }, 100*time.Millisecond, tick)
	assert.Equal(t, grid.Cell{X: n, Y: 5}, s.goal(1))

	st := p.Stats()
	assert.EqualValues(t, n+1, st.Submits)
	require.Eventually(t, func() bool { return p.Stats().Searches == 2 }, waitFor, tick)
}

func TestPilot_DeactivateWaitsForInFlightSearch(t *testing.T) {
	s := newGatedSearcher(nil)
	p := NewPilot(grid.New(16, 16), WithSearcher(s))
	p.Activate()
	p.SetGoal(grid.Cell{X: 3, Y: 3})
	require.Eventually(t, func() bool { return s.calls() == 1 }, waitFor, tick)

	stopped := make(chan struct{})
	go func() {
		p.Deactivate()
		close(stopped)
	}()
	p.SetGoal(grid.Cell{X: 9, Y: 9})

	require.Never(t, func() bool {
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, tick)

	s.release()
	select {
	case <-stopped:
	case <-time.After(waitFor):
		t.Fatal("Deactivate did not return after the search finished")
	}
	assert.Equal(t, 1, s.calls(), "no search may start after shutdown")
}

func TestPilot_NoSearchUntilGoalKnown(t *testing.T) {
	g := grid.New(8, 8)
	s := openSearcher(nil)
	p := NewPilot(g, WithSearcher(s))
	p.Activate()
	defer p.Deactivate()

	p.SetOrigin(grid.Cell{X: 1, Y: 1})
	p.SetOccupancy(NewOccupancy(g))
	require.Never(t, func() bool { return s.calls() > 0 }, 50*time.Millisecond, tick)
	assert.Zero(t, p.Stats().Submits)
}

func TestPilot_AdvanceBeforeActivateIsNoOp(t *testing.T) {
	p := NewPilot(grid.New(8, 8))
	assert.False(t, p.HasRoute())
	d, ok := p.AdvanceDirection(grid.Cell{X: 2, Y: 2})
	assert.False(t, ok)
	assert.Equal(t, grid.None, d)
}

func publishedPilot(t *testing.T, g grid.Grid, route Route) *Pilot {
	t.Helper()
	p := NewPilot(g, WithSearcher(openSearcher(route)))
	p.Activate()
	t.Cleanup(p.Deactivate)
	p.SetGoal(grid.Cell{})
	require.Eventually(t, p.HasRoute, waitFor, tick)
	return p
}

func TestPilot_TieBreakPrefersVertical(t *testing.T) {
	g := grid.New(32, 32)

	p := publishedPilot(t, g, Route{{X: 6, Y: 6}})
	d, ok := p.AdvanceDirection(grid.Cell{X: 5, Y: 5})
	require.True(t, ok)
	assert.Equal(t, grid.Down, d)

	p = publishedPilot(t, g, Route{{X: 7, Y: 5}})
	d, ok = p.AdvanceDirection(grid.Cell{X: 5, Y: 5})
	require.True(t, ok)
	assert.Equal(t, grid.Right, d)

	p = publishedPilot(t, g, Route{{X: 4, Y: 3}})
	d, _ = p.AdvanceDirection(grid.Cell{X: 5, Y: 5})
	assert.Equal(t, grid.Up, d, "|dx|=1 < |dy|=2")
}

func TestPilot_TurnsThroughShorterWrap(t *testing.T) {
	g := grid.New(32, 32)
	p := publishedPilot(t, g, Route{{X: 31, Y: 10}})
	d, ok := p.AdvanceDirection(grid.Cell{X: 0, Y: 10})
	require.True(t, ok)
	assert.Equal(t, grid.Left, d)

	p = publishedPilot(t, g, Route{{X: 3, Y: 0}})
	d, _ = p.AdvanceDirection(grid.Cell{X: 3, Y: 30})
	assert.Equal(t, grid.Down, d)
}

func TestPilot_CursorCatchesUpOnNoOpTick(t *testing.T) {
	g := grid.New(16, 16)
	p := publishedPilot(t, g, Route{{X: 5, Y: 4}, {X: 5, Y: 3}})

	d, ok := p.AdvanceDirection(grid.Cell{X: 5, Y: 4})
	assert.False(t, ok, "standing on the waypoint issues no turn")
	assert.Equal(t, grid.None, d)

	d, ok = p.AdvanceDirection(grid.Cell{X: 5, Y: 4})
	require.True(t, ok)
	assert.Equal(t, grid.Up, d)

	p.AdvanceDirection(grid.Cell{X: 5, Y: 3})
	assert.False(t, p.HasRoute())
	_, ok = p.AdvanceDirection(grid.Cell{X: 5, Y: 3})
	assert.False(t, ok, "consumed route behaves like no route")
}

func TestPilot_EmptyResultClearsRoute(t *testing.T) {
	g := grid.New(12, 12)
	p := NewPilot(g)
	p.Activate()
	defer p.Deactivate()

	start := grid.Cell{X: 6, Y: 6}
	p.SetOrigin(start)
	p.SetGoal(grid.Cell{X: 1, Y: 1})
	require.Eventually(t, p.HasRoute, waitFor, tick)

	n := g.Neighbors(start)
	p.SetOccupancy(OccupancyFrom(g, n[:]))
	require.Eventually(t, func() bool { return p.Stats().Empty == 1 }, waitFor, tick)
	assert.False(t, p.HasRoute())
}

// Drive a simulated agent that moves one cell every other tick, the way a
// sub-cell-speed snake calls AdvanceDirection several times per cell.
func TestPilot_AgentFollowsRouteToGoal(t *testing.T) {
	g := grid.New(24, 24)
	wall := []grid.Cell{{X: 8, Y: 5}, {X: 8, Y: 6}, {X: 8, Y: 7}, {X: 8, Y: 8}}
	p := NewPilot(g)
	p.Activate()
	defer p.Deactivate()

	pos, heading := grid.Cell{X: 5, Y: 6}, grid.Up
	goal := grid.Cell{X: 12, Y: 6}
	p.SetOrigin(pos)
	p.SetOccupancy(OccupancyFrom(g, wall))
	p.SetGoal(goal)
	require.Eventually(t, p.HasRoute, waitFor, tick)

	for i := 0; i < 200 && pos != goal; i++ {
		if d, ok := p.AdvanceDirection(pos); ok {
			heading = d
		}
		if i%2 == 1 {
			pos = g.Step(pos, heading)
			require.NotContains(t, wall, pos, "walked into the wall at step %d", i)
		}
	}
	assert.Equal(t, goal, pos)
}

func TestPilot_SettleWaitsForLatestAnswer(t *testing.T) {
	g := grid.New(16, 16)
	p := NewPilot(g)
	p.Settle()

	p.Activate()
	defer p.Deactivate()
	p.SetOrigin(grid.Cell{X: 1, Y: 1})
	for x := 2; x < 10; x++ {
		p.SetGoal(grid.Cell{X: x, Y: 1})
	}
	p.Settle()

	r, _ := p.Route()
	last, ok := r.Goal()
	require.True(t, ok)
	assert.Equal(t, grid.Cell{X: 9, Y: 1}, last)
	assert.Equal(t, p.Stats().Submits, p.Stats().LastSeq)
}
