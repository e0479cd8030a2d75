package arena

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelWidth      = 300
	panelMaxEntries = 60
	panelLineHeight = 14
)

var (
	playerColor = color.RGBA{R: 70, G: 200, B: 90, A: 255}
	aiColor     = color.RGBA{R: 70, G: 130, B: 230, A: 255}
	globalColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

func actorColor(label string) color.RGBA {
	switch label {
	case PlayerLabel:
		return playerColor
	case AILabel:
		return aiColor
	}
	return globalColor
}

// EventPanel is a ring buffer of recent match events rendered beside the
// board.
type EventPanel struct {
	entries []EventEntry
	head    int
	count   int
}

// NewEventPanel creates a panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]EventEntry, panelMaxEntries),
	}
}

// Add appends an entry, overwriting the oldest when full.
func (p *EventPanel) Add(e EventEntry) {
	p.entries[p.head] = e
	p.head = (p.head + 1) % panelMaxEntries
	if p.count < panelMaxEntries {
		p.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (p *EventPanel) Recent() []EventEntry {
	result := make([]EventEntry, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + panelMaxEntries) % panelMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

// Draw renders the panel at panelX, newest entry at the bottom.
func (p *EventPanel) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(panelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(panelWidth), 16, color.RGBA{R: 20, G: 24, B: 34, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 0)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+panelWidth), 16, 1.0, color.RGBA{R: 50, G: 60, B: 90, A: 200}, false)

	entries := p.Recent()
	maxVisible := (panelH - 24) / panelLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const highlight = 3

	y := 20
	for i, e := range entries {
		if i >= len(entries)-highlight {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(panelWidth-4), float32(panelLineHeight), color.RGBA{R: 28, G: 34, B: 48, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, actorColor(e.Actor), false)
		line := fmt.Sprintf("%4d %-2s %s %s", e.Tick, e.Actor, e.Key, e.Value)
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y-2)
		y += panelLineHeight
	}
}
