package arena

import (
	"fmt"
	"strings"
)

// Event categories written by the match loop.
const (
	CatItem     = "item"
	CatDeath    = "death"
	CatGoal     = "goal"
	CatRoute    = "route"
	CatObstacle = "obstacle"
	CatMove     = "move"
	CatMatch    = "match"
)

// EventEntry is one recorded event during a match.
type EventEntry struct {
	Tick     int
	Actor    string  // snake label e.g. "P1", "AI", or "--" for global events
	Category string  // item, death, goal, route, obstacle, move, match
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] AI   item      eat              bonus at (3,4)
func (e EventEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// EventLog collects structured events during a match. It is unbounded and
// machine-readable; the window viewer keeps its own short ring buffer.
type EventLog struct {
	entries []EventEntry
	verbose bool
}

// NewEventLog creates an EventLog. If verbose is true, per-move and
// per-obstacle-step entries are also recorded.
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Add records a new entry.
func (el *EventLog) Add(tick int, actor, category, key, value string, numVal float64) {
	el.entries = append(el.entries, EventEntry{
		Tick:     tick,
		Actor:    actor,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (el *EventLog) AddVerbose(tick int, actor, category, key, value string, numVal float64) {
	if !el.verbose {
		return
	}
	el.Add(tick, actor, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (el *EventLog) Entries() []EventEntry {
	return el.entries
}

// Len returns the number of recorded entries.
func (el *EventLog) Len() int {
	return len(el.entries)
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (el *EventLog) Filter(category, key string) []EventEntry {
	var out []EventEntry
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterActor returns entries for one snake label.
func (el *EventLog) FilterActor(label string) []EventEntry {
	var out []EventEntry
	for _, e := range el.entries {
		if e.Actor == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (el *EventLog) FilterTickRange(fromTick, toTick int) []EventEntry {
	var out []EventEntry
	for _, e := range el.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (el *EventLog) CountCategory(category, key string) int {
	return len(el.Filter(category, key))
}

// FirstTick returns the tick of the first entry matching category, key and
// value substring, or -1.
func (el *EventLog) FirstTick(category, key, valueSubstr string) int {
	for _, e := range el.entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if valueSubstr == "" || strings.Contains(e.Value, valueSubstr) {
			return e.Tick
		}
	}
	return -1
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (el *EventLog) LastOf(category, key string) (EventEntry, bool) {
	entries := el.Filter(category, key)
	if len(entries) == 0 {
		return EventEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (el *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range el.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (el *EventLog) Format() string {
	return formatEntries(el.entries)
}

// FormatRange returns a log string filtered to a tick range.
func (el *EventLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(el.FilterTickRange(fromTick, toTick))
}

func formatEntries(entries []EventEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the match state.
func (el *EventLog) Summary(m *Match) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", m.Tick)
	for _, s := range m.Snakes() {
		state := "alive"
		if !s.Alive {
			state = fmt.Sprintf("dead (%s at T=%d)", s.DeathCause, s.DeathTick)
		}
		fmt.Fprintf(&sb, "%-3s score=%d size=%d speed=%.3f head=%s %s\n",
			s.Label, s.Score, s.Size(), s.Speed, s.Head(), state)
	}
	fmt.Fprintf(&sb, "Items on board: %d  eaten: %d\n", len(m.Items), el.CountCategory(CatItem, "eat"))
	if m.pilot != nil {
		st := m.pilot.Stats()
		fmt.Fprintf(&sb, "Pilot: searches=%d found=%d empty=%d submits=%d\n",
			st.Searches, st.Found, st.Empty, st.Submits)
	}
	return sb.String()
}
