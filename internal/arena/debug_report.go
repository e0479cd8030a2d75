package arena

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// PilotReport renders the AI pilot state and the recent event log as plain
// text, for pasting into a bug report.
func (m *Match) PilotReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := m.Tick
	fromTick := max(0, toTick-lastTicks+1)

	var b strings.Builder
	fmt.Fprintf(&b, "--- Serpent Arena pilot report ---\n")
	fmt.Fprintf(&b, "match=%s seed=%d grid=%dx%d tick_range=[%d..%d]\n\n", m.ID, m.Seed, m.Grid.W, m.Grid.H, fromTick, toTick)

	if m.AI == nil {
		b.WriteString("(AI disabled)\n\n")
	} else {
		st := m.PilotStats()
		fmt.Fprintf(&b, "== pilot (%s) ==\n", m.AI.Label)
		fmt.Fprintf(&b, "head=%s dir=%s speed=%.3f size=%d alive=%v\n", m.AI.Head(), m.AI.Dir, m.AI.Speed, m.AI.Size(), m.AI.Alive)
		if g, ok := m.Goal(); ok {
			fmt.Fprintf(&b, "goal=%s wrap_dist=%d\n", g, m.Grid.WrapDistance(m.AI.Head(), g))
		} else {
			b.WriteString("goal=none\n")
		}
		fmt.Fprintf(&b, "searches=%d found=%d empty=%d submits=%d last_seq=%d last_len=%d last_took=%s\n",
			st.Searches, st.Found, st.Empty, st.Submits, st.LastSeq, st.LastRouteLen, st.LastDuration)

		route, cursor := m.Route()
		if cursor < len(route) {
			ahead := make([]string, 0, len(route)-cursor)
			for _, c := range route[cursor:] {
				ahead = append(ahead, c.String())
			}
			fmt.Fprintf(&b, "route_ahead=%d [%s]\n\n", len(ahead), strings.Join(ahead, " "))
		} else {
			b.WriteString("route_ahead=0\n\n")
		}
	}

	b.WriteString("== events ==\n")
	events := m.Log.FormatRange(fromTick, toTick)
	if events == "" {
		b.WriteString("(no events in range)\n")
	} else {
		b.WriteString(events)
	}
	b.WriteByte('\n')
	b.WriteString(m.Log.Summary(m))
	return b.String()
}

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
