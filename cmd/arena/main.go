package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/serpent-arena/internal/arena"
	"github.com/Garsondee/serpent-arena/internal/config"
)

func main() {
	configPath := flag.String("config", "arena.toml", "path to TOML config (missing file uses defaults)")
	name := flag.String("name", "player", "name recorded in the high score table")
	noAI := flag.Bool("no-ai", false, "play alone without the AI snake")
	verbose := flag.Bool("v", false, "debug logging on stderr")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	scores := arena.NewHighScores(cfg.HighScores.Path, cfg.HighScores.Size)
	if err := scores.Load(); err != nil {
		logger.Warn("high scores unavailable", "err", err)
	}

	var opts []arena.MatchOption
	if *noAI {
		opts = append(opts, arena.WithoutAI())
	}
	viewer := arena.NewViewer(cfg, scores, *name, logger, opts...)
	defer viewer.Close()

	w, h := viewer.Layout(0, 0)
	ebiten.SetWindowTitle("Serpent Arena")
	ebiten.SetWindowSize(w, h)
	ebiten.SetTPS(cfg.Grid.FPS)
	if err := ebiten.RunGame(viewer); err != nil {
		viewer.Close()
		log.Fatal(err)
	}
}
