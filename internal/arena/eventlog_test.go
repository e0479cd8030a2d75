package arena

import (
	"strings"
	"testing"
)

func TestEventLog_FilterAndQueries(t *testing.T) {
	el := NewEventLog(false)
	el.Add(1, "--", CatItem, "spawn", "normal at (1,1)", 1)
	el.Add(4, "AI", CatGoal, "target", "(1,1)", 6)
	el.Add(9, "AI", CatItem, "eat", "normal at (1,1)", 1)
	el.Add(12, "P1", CatDeath, "obstacle", "at (4,4) size=1 score=0", 0)

	if n := el.CountCategory(CatItem, ""); n != 2 {
		t.Fatalf("expected 2 item events, got %d", n)
	}
	if n := len(el.FilterActor("AI")); n != 2 {
		t.Fatalf("expected 2 AI events, got %d", n)
	}
	if n := len(el.FilterTickRange(4, 9)); n != 2 {
		t.Fatalf("expected 2 events in [4,9], got %d", n)
	}
	if tick := el.FirstTick(CatItem, "eat", "normal"); tick != 9 {
		t.Fatalf("expected first eat at 9, got %d", tick)
	}
	if tick := el.FirstTick(CatItem, "eat", "bonus"); tick != -1 {
		t.Fatalf("expected -1 for missing event, got %d", tick)
	}
	if e, ok := el.LastOf(CatDeath, ""); !ok || e.Actor != "P1" {
		t.Fatal("LastOf should find the death")
	}
	if !el.HasEntry("", "", "(4,4)") || el.HasEntry(CatGoal, "", "(4,4)") {
		t.Fatal("HasEntry should match on value substring within the category")
	}
}

func TestEventLog_VerboseGate(t *testing.T) {
	quiet := NewEventLog(false)
	quiet.AddVerbose(1, "P1", CatMove, "head", "(1,1)", 0)
	if quiet.Len() != 0 {
		t.Fatal("verbose entry recorded on a quiet log")
	}
	loud := NewEventLog(true)
	loud.AddVerbose(1, "P1", CatMove, "head", "(1,1)", 0)
	if loud.Len() != 1 {
		t.Fatal("verbose entry missing on a verbose log")
	}
}

func TestEventEntry_FixedWidthFormat(t *testing.T) {
	e := EventEntry{Tick: 42, Actor: "AI", Category: CatItem, Key: "eat", Value: "bonus at (3,4)"}
	want := "[T=042] AI   item      eat              bonus at (3,4)"
	if got := e.String(); got != want {
		t.Fatalf("format mismatch:\n got %q\nwant %q", got, want)
	}
	el := NewEventLog(false)
	el.Add(1, "AI", CatItem, "eat", "x", 0)
	el.Add(2, "AI", CatItem, "eat", "y", 0)
	if lines := strings.Count(el.Format(), "\n"); lines != 2 {
		t.Fatalf("expected 2 formatted lines, got %d", lines)
	}
	if got := el.FormatRange(2, 2); !strings.Contains(got, " y") || strings.Contains(got, " x") {
		t.Fatalf("FormatRange should keep only tick 2: %q", got)
	}
}

func TestEventPanel_RingKeepsNewest(t *testing.T) {
	p := NewEventPanel()
	for i := 0; i < panelMaxEntries+10; i++ {
		p.Add(EventEntry{Tick: i})
	}
	recent := p.Recent()
	if len(recent) != panelMaxEntries {
		t.Fatalf("expected %d entries, got %d", panelMaxEntries, len(recent))
	}
	if recent[0].Tick != 10 || recent[len(recent)-1].Tick != panelMaxEntries+9 {
		t.Fatalf("expected ticks 10..%d oldest first, got %d..%d", panelMaxEntries+9, recent[0].Tick, recent[len(recent)-1].Tick)
	}
}
