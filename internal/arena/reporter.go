package arena

import (
	"fmt"
	"strings"

	"github.com/Garsondee/serpent-arena/internal/nav"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// SnakeReport captures one snake's state at one point in time.
type SnakeReport struct {
	Label string
	Score int
	Size  int
	Speed float64
	Alive bool
}

// Snapshot is a full report of the match at one tick.
type Snapshot struct {
	Tick   int
	Snakes []SnakeReport
	Items  int
	Pilot  nav.Stats
	Route  int // waypoints still ahead of the AI
	Goal   int // wrap distance from the AI head to its goal, -1 without one
	Events int // event log length when sampled
}

func (s Snapshot) snake(label string) (SnakeReport, bool) {
	for _, r := range s.Snakes {
		if r.Label == label {
			return r, true
		}
	}
	return SnakeReport{}, false
}

// Reporter collects periodic snapshots from a match and can produce
// summaries over sliding time windows.
type Reporter struct {
	history     []Snapshot
	windowTicks int
}

// NewReporter creates a reporter with the given window size.
func NewReporter(windowTicks int) *Reporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &Reporter{windowTicks: windowTicks}
}

// Collect gathers a snapshot from the current match state.
func (r *Reporter) Collect(m *Match) {
	snap := Snapshot{
		Tick:   m.Tick,
		Items:  len(m.Items),
		Pilot:  m.PilotStats(),
		Goal:   -1,
		Events: m.Log.Len(),
	}
	for _, s := range m.Snakes() {
		snap.Snakes = append(snap.Snakes, SnakeReport{
			Label: s.Label,
			Score: s.Score,
			Size:  s.Size(),
			Speed: s.Speed,
			Alive: s.Alive,
		})
	}
	if route, cursor := m.Route(); cursor < len(route) {
		snap.Route = len(route) - cursor
	}
	if g, ok := m.Goal(); ok && m.AI != nil {
		snap.Goal = m.Grid.WrapDistance(m.AI.Head(), g)
	}
	r.history = append(r.history, snap)
}

// History returns every snapshot collected so far.
func (r *Reporter) History() []Snapshot {
	return r.history
}

// Latest returns the most recent snapshot, or false if none.
func (r *Reporter) Latest() (Snapshot, bool) {
	if len(r.history) == 0 {
		return Snapshot{}, false
	}
	return r.history[len(r.history)-1], true
}

// WindowReport summarises the snapshots inside the reporter's window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	PlayerScoreGain int
	AIScoreGain     int
	AvgItems        float64
	AvgRouteLen     float64
	AvgGoalDist     float64

	Searches uint64
	Found    uint64
	Empty    uint64
	Submits  uint64
}

// CoalesceRatio is the share of submitted queries that never ran a search.
func (w *WindowReport) CoalesceRatio() float64 {
	if w.Submits == 0 {
		return 0
	}
	skipped := float64(w.Submits) - float64(w.Searches)
	return max(0, skipped/float64(w.Submits))
}

// WindowSummary returns a summary over the last windowTicks ticks, or nil if
// fewer than two snapshots fall inside it.
func (r *Reporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	last := r.history[len(r.history)-1]
	from := last.Tick - r.windowTicks
	start := len(r.history) - 1
	for start > 0 && r.history[start-1].Tick >= from {
		start--
	}
	window := r.history[start:]
	if len(window) < 2 {
		return nil
	}
	first := window[0]

	w := &WindowReport{
		FromTick:    first.Tick,
		ToTick:      last.Tick,
		SampleCount: len(window),
		Searches:    last.Pilot.Searches - first.Pilot.Searches,
		Found:       last.Pilot.Found - first.Pilot.Found,
		Empty:       last.Pilot.Empty - first.Pilot.Empty,
		Submits:     last.Pilot.Submits - first.Pilot.Submits,
	}
	if a, ok := first.snake(PlayerLabel); ok {
		b, _ := last.snake(PlayerLabel)
		w.PlayerScoreGain = b.Score - a.Score
	}
	if a, ok := first.snake(AILabel); ok {
		b, _ := last.snake(AILabel)
		w.AIScoreGain = b.Score - a.Score
	}
	goalSamples := 0
	for _, s := range window {
		w.AvgItems += float64(s.Items)
		w.AvgRouteLen += float64(s.Route)
		if s.Goal >= 0 {
			w.AvgGoalDist += float64(s.Goal)
			goalSamples++
		}
	}
	n := float64(len(window))
	w.AvgItems /= n
	w.AvgRouteLen /= n
	if goalSamples > 0 {
		w.AvgGoalDist /= float64(goalSamples)
	}
	return w
}

// Format renders the window report as report lines.
func (w *WindowReport) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "window_samples=%d window_tick_range=%d..%d\n", w.SampleCount, w.FromTick, w.ToTick)
	fmt.Fprintf(&sb, "window_scores: player_gain=%d ai_gain=%d avg_items=%.1f\n", w.PlayerScoreGain, w.AIScoreGain, w.AvgItems)
	fmt.Fprintf(&sb, "window_pilot: searches=%d found=%d empty=%d submits=%d coalesced=%.0f%% avg_route=%.1f avg_goal_dist=%.1f\n",
		w.Searches, w.Found, w.Empty, w.Submits, 100*w.CoalesceRatio(), w.AvgRouteLen, w.AvgGoalDist)
	return sb.String()
}
