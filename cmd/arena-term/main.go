package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/Garsondee/serpent-arena/internal/arena"
	"github.com/Garsondee/serpent-arena/internal/config"
	"github.com/Garsondee/serpent-arena/internal/grid"
)

const (
	sampleRate = beep.SampleRate(44100)

	eatToneHz   = 880
	deathToneHz = 220
)

var (
	styleBoard    = tcell.StyleDefault.Background(tcell.ColorBlack)
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stylePlayerHd = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleAI       = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleAIHead   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleRoute    = tcell.StyleDefault.Foreground(tcell.ColorNavy)
	styleHUD      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type termGame struct {
	screen tcell.Screen
	cfg    *config.Config
	scores *arena.HighScores
	name   string
	logger *slog.Logger

	m        *arena.Match
	seen     int
	recorded bool
	status   string

	audioInit bool
}

func newTermGame(cfg *config.Config, scores *arena.HighScores, name string, logger *slog.Logger) (*termGame, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.SetStyle(styleBoard)
	screen.HideCursor()

	g := &termGame{
		screen: screen,
		cfg:    cfg,
		scores: scores,
		name:   name,
		logger: logger,
	}
	if err := g.initAudio(); err != nil {
		// Non-fatal, the game runs silent.
		logger.Warn("audio initialization failed", "err", err)
	}
	g.restart()
	return g, nil
}

func (g *termGame) initAudio() error {
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		g.audioInit = true
	}
	return err
}

func (g *termGame) blip(hz float64, d time.Duration) {
	if !g.audioInit {
		return
	}
	sine, err := generators.SineTone(sampleRate, hz)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

func (g *termGame) restart() {
	if g.m != nil {
		g.m.Close()
	}
	g.m = arena.NewMatch(
		arena.WithConfig(g.cfg),
		arena.WithSeed(time.Now().UnixNano()),
		arena.WithLogger(g.logger),
	)
	g.seen = g.m.Log.Len()
	g.recorded = false
	g.status = ""
}

// playSounds turns new eat and death events into blips.
func (g *termGame) playSounds() {
	entries := g.m.Log.Entries()
	for _, e := range entries[g.seen:] {
		switch {
		case e.Category == arena.CatItem && e.Key == "eat":
			g.blip(eatToneHz, 50*time.Millisecond)
		case e.Category == arena.CatDeath:
			g.blip(deathToneHz, 300*time.Millisecond)
		}
	}
	g.seen = len(entries)
}

func (g *termGame) recordScore() {
	score := g.m.Player.Score
	g.status = fmt.Sprintf("Game over - %d points. Enter restarts, q quits.", score)
	if g.scores == nil || !g.scores.Add(g.name, score) {
		return
	}
	if err := g.scores.Save(); err != nil {
		g.logger.Warn("high score save failed", "err", err)
		return
	}
	g.status = fmt.Sprintf("New high score: %d. Enter restarts, q quits.", score)
}

func (g *termGame) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			g.m.SteerPlayer(grid.Up)
		case tcell.KeyDown:
			g.m.SteerPlayer(grid.Down)
		case tcell.KeyLeft:
			g.m.SteerPlayer(grid.Left)
		case tcell.KeyRight:
			g.m.SteerPlayer(grid.Right)
		case tcell.KeyEnter:
			if g.m.Over() {
				g.restart()
			}
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'w':
				g.m.SteerPlayer(grid.Up)
			case 's':
				g.m.SteerPlayer(grid.Down)
			case 'a':
				g.m.SteerPlayer(grid.Left)
			case 'd':
				g.m.SteerPlayer(grid.Right)
			}
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// setCell draws one board cell as two terminal columns so the board keeps
// a roughly square aspect.
func (g *termGame) setCell(c grid.Cell, r rune, style tcell.Style) {
	g.screen.SetContent(c.X*2, c.Y, r, nil, style)
	g.screen.SetContent(c.X*2+1, c.Y, r, nil, style)
}

func (g *termGame) drawText(x, y int, s string) {
	for i, r := range s {
		g.screen.SetContent(x+i, y, r, nil, styleHUD)
	}
}

func (g *termGame) draw() {
	g.screen.Clear()
	m := g.m

	route, cursor := m.Route()
	for _, c := range route[min(cursor, len(route)):] {
		g.setCell(c, '·', styleRoute)
	}
	for _, o := range m.Obstacles {
		g.setCell(o.Cell, '█', styleObstacle)
	}
	for _, it := range m.Items {
		c := it.Kind.Color()
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		g.setCell(it.Cell, '●', style)
	}
	if m.AI != nil && m.AI.Alive {
		for _, c := range m.AI.Body() {
			g.setCell(c, '▓', styleAI)
		}
		g.setCell(m.AI.Head(), '█', styleAIHead)
	}
	if m.Player.Alive {
		for _, c := range m.Player.Body() {
			g.setCell(c, '▓', stylePlayer)
		}
		g.setCell(m.Player.Head(), '█', stylePlayerHd)
	}

	hud := fmt.Sprintf("T=%d  %s %d", m.Tick, arena.PlayerLabel, m.Player.Score)
	if m.AI != nil {
		hud += fmt.Sprintf("  %s %d", arena.AILabel, m.AI.Score)
	}
	g.drawText(0, m.Grid.H, hud)
	if g.status != "" {
		g.drawText(0, m.Grid.H+1, g.status)
	}

	g.screen.Show()
}

func (g *termGame) run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.cfg.Grid.FPS))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !g.handleInput(ev) {
				return
			}

		case <-ticker.C:
			g.m.Step()
			g.playSounds()
			if g.m.Over() && !g.recorded {
				g.recorded = true
				g.recordScore()
			}
			g.draw()
		}
	}
}

func (g *termGame) cleanup() {
	g.m.Close()
	if g.audioInit {
		speaker.Close()
	}
	g.screen.Fini()
}

func main() {
	configPath := flag.String("config", "arena.toml", "path to TOML config (missing file uses defaults)")
	name := flag.String("name", "player", "name recorded in the high score table")
	logPath := flag.String("log", "", "write debug logs to this file (the terminal is owned by the board)")
	flag.Parse()

	logger := slog.New(slog.DiscardHandler)
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	scores := arena.NewHighScores(cfg.HighScores.Path, cfg.HighScores.Size)
	if err := scores.Load(); err != nil {
		logger.Warn("high scores unavailable", "err", err)
	}

	game, err := newTermGame(cfg, scores, *name, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer game.cleanup()

	game.run()
}
