package arena

import (
	"fmt"
	"strings"

	"github.com/Garsondee/serpent-arena/internal/nav"
)

// Death records how and when a snake died.
type Death struct {
	Label string
	Tick  int
	Cause string
}

// MatchResult is the outcome of a match at the moment Summary is called.
type MatchResult struct {
	ID     string
	Seed   int64
	Ticks  int
	Over   bool
	Snakes []SnakeReport
	Deaths []Death
	Eaten  map[string]int // items eaten per snake label
	Pilot  nav.Stats
}

// Winner returns the label with the higher score, or "draw".
func (r MatchResult) Winner() string {
	best, label, tie := -1, "draw", false
	for _, s := range r.Snakes {
		switch {
		case s.Score > best:
			best, label, tie = s.Score, s.Label, false
		case s.Score == best:
			tie = true
		}
	}
	if tie || len(r.Snakes) < 2 {
		return "draw"
	}
	return label
}

// Score returns the score of the snake with the given label.
func (r MatchResult) Score(label string) int {
	for _, s := range r.Snakes {
		if s.Label == label {
			return s.Score
		}
	}
	return 0
}

// DeathOf returns the death record for label, or false if it survived.
func (r MatchResult) DeathOf(label string) (Death, bool) {
	for _, d := range r.Deaths {
		if d.Label == label {
			return d, true
		}
	}
	return Death{}, false
}

// Summary builds the match result from the current state.
func (m *Match) Summary() MatchResult {
	res := MatchResult{
		ID:    m.ID,
		Seed:  m.Seed,
		Ticks: m.Tick,
		Over:  m.Over(),
		Eaten: map[string]int{},
		Pilot: m.PilotStats(),
	}
	for _, s := range m.Snakes() {
		res.Snakes = append(res.Snakes, SnakeReport{
			Label: s.Label,
			Score: s.Score,
			Size:  s.Size(),
			Speed: s.Speed,
			Alive: s.Alive,
		})
		if !s.Alive {
			res.Deaths = append(res.Deaths, Death{Label: s.Label, Tick: s.DeathTick, Cause: s.DeathCause})
		}
	}
	for _, e := range m.Log.Filter(CatItem, "eat") {
		res.Eaten[e.Actor]++
	}
	return res
}

// String renders the result as one report line.
func (r MatchResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "match=%s seed=%d ticks=%d", r.ID, r.Seed, r.Ticks)
	for _, s := range r.Snakes {
		fmt.Fprintf(&sb, " %s=%d/%d", s.Label, s.Score, s.Size)
	}
	fmt.Fprintf(&sb, " winner=%s", r.Winner())
	return sb.String()
}
