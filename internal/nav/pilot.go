package nav

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

// Pilot steers one agent. A background worker answers route queries while the
// foreground tick loop submits goals and occupancy and reads back directions.
//
// SetGoal, SetOccupancy, SetOrigin and AdvanceDirection belong to the
// foreground and must not be called concurrently with each other. Activate
// and Deactivate may be called from anywhere.
type Pilot struct {
	grid   grid.Grid
	search Searcher
	log    *slog.Logger
	box    *Mailbox

	// foreground draft of the next query
	draft   Query
	hasGoal bool

	life    sync.Mutex
	running bool
	done    chan struct{}
}

// PilotOption configures a Pilot.
type PilotOption func(*Pilot)

// WithSearcher replaces the A* searcher, mostly for tests.
func WithSearcher(s Searcher) PilotOption {
	return func(p *Pilot) { p.search = s }
}

// WithLogger sets the logger for worker lifecycle and search events.
func WithLogger(l *slog.Logger) PilotOption {
	return func(p *Pilot) { p.log = l }
}

// NewPilot creates an inactive pilot for grid g.
func NewPilot(g grid.Grid, opts ...PilotOption) *Pilot {
	p := &Pilot{
		grid:   g,
		search: AStar{Grid: g},
		log:    slog.New(slog.DiscardHandler),
		box:    NewMailbox(),
	}
	p.draft.Occupancy = NewOccupancy(g)
	for _, o := range opts {
		o(p)
	}
	return p
}

// Activate starts the search worker. No-op while already running.
func (p *Pilot) Activate() {
	p.life.Lock()
	defer p.life.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.done = make(chan struct{})
	p.box.Reopen()
	go p.run(p.done)
	p.log.Info("pilot worker started")
}

// Deactivate stops the worker and blocks until it has returned. A search in
// flight is allowed to finish first. No-op when not running.
func (p *Pilot) Deactivate() {
	p.life.Lock()
	defer p.life.Unlock()
	if !p.running {
		return
	}
	p.running = false
	p.box.Close()
	<-p.done
	p.log.Info("pilot worker stopped")
}

// Active reports whether the worker is running.
func (p *Pilot) Active() bool {
	p.life.Lock()
	defer p.life.Unlock()
	return p.running
}

func (p *Pilot) run(done chan struct{}) {
	defer close(done)
	for {
		q, ok := p.box.Wait()
		if !ok {
			return
		}
		began := time.Now()
		route := p.search.FindRoute(q.Start, q.Goal, q.Occupancy)
		took := time.Since(began)
		p.box.Publish(q, route, took)
		p.log.Debug("route published",
			"seq", q.Seq,
			"start", q.Start.String(),
			"goal", q.Goal.String(),
			"blocked", q.Occupancy.Len(),
			"len", len(route),
			"took", took,
		)
	}
}

// SetGoal records the target cell and requests a search.
func (p *Pilot) SetGoal(c grid.Cell) {
	p.draft.Goal = p.grid.Wrap(c)
	p.hasGoal = true
	p.submit()
}

// SetOccupancy records the blocked-cell snapshot and requests a search once a
// goal is known.
func (p *Pilot) SetOccupancy(occ Occupancy) {
	p.draft.Occupancy = occ
	p.submit()
}

// SetOrigin records where the next search starts. It does not request one.
func (p *Pilot) SetOrigin(c grid.Cell) {
	p.draft.Start = p.grid.Wrap(c)
}

func (p *Pilot) submit() {
	if !p.hasGoal {
		return
	}
	p.box.Submit(p.draft)
}

// Settle blocks until the worker has answered the latest submitted query.
// It returns at once when the pilot is inactive. Headless matches call it
// every tick to make runs reproducible for a given seed.
func (p *Pilot) Settle() {
	if !p.Active() {
		return
	}
	p.box.WaitIdle()
}

// HasRoute reports whether the published route still has waypoints ahead.
func (p *Pilot) HasRoute() bool {
	return p.box.HasRoute()
}

// AdvanceDirection returns the heading toward the next waypoint, or false when
// there is nothing to follow and the agent should keep its heading. The axis
// with the larger wrap-corrected delta wins; vertical wins ties.
func (p *Pilot) AdvanceDirection(current grid.Cell) (grid.Direction, bool) {
	current = p.grid.Wrap(current)
	wp, ok := p.box.TakeWaypoint(current)
	if !ok {
		return grid.None, false
	}
	dx, dy := p.grid.Delta(current, wp)
	var d grid.Direction
	if abs(dx) > abs(dy) {
		d = grid.Horizontal(dx)
	} else {
		d = grid.Vertical(dy)
	}
	return d, d != grid.None
}

// Route returns a copy of the published route and the cursor position.
func (p *Pilot) Route() (Route, int) {
	return p.box.Published()
}

// Stats returns the worker counters.
func (p *Pilot) Stats() Stats {
	return p.box.Stats()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
