// Package config loads the arena settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the arena configuration.
type Config struct {
	Grid       GridConfig      `toml:"grid"`
	Speed      SpeedConfig     `toml:"speed"`
	Items      ItemConfig      `toml:"items"`
	Obstacles  ObstacleConfig  `toml:"obstacles"`
	HighScores HighScoreConfig `toml:"highscores"`

	// Warnings contains any warnings generated during config loading.
	Warnings []string `toml:"-"`
}

type GridConfig struct {
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	CellSize int `toml:"cell_size"` // screen pixels per cell in the window viewer
	FPS      int `toml:"fps"`
}

// SpeedConfig holds movement speeds in cells per tick.
type SpeedConfig struct {
	Player float64 `toml:"player"`
	AI     float64 `toml:"ai"`
}

type ItemConfig struct {
	Initial    int `toml:"initial"`
	SpawnEvery int `toml:"spawn_every"`
	Max        int `toml:"max"`
}

type ObstacleConfig struct {
	Fixed     int `toml:"fixed"`
	Moving    int `toml:"moving"`
	StepEvery int `toml:"step_every"`
	// Margin keeps obstacles this many cells away from the grid centre,
	// where the player spawns.
	Margin int `toml:"margin"`
	Leg    int `toml:"leg"`
	Radius int `toml:"radius"`
}

type HighScoreConfig struct {
	Path string `toml:"path"`
	Size int    `toml:"size"`
}

// Default returns the stock arena settings.
func Default() *Config {
	return &Config{
		Grid:  GridConfig{Width: 32, Height: 32, CellSize: 20, FPS: 60},
		Speed: SpeedConfig{Player: 0.1, AI: 0.1},
		Items: ItemConfig{Initial: 3, SpawnEvery: 5, Max: 5},
		Obstacles: ObstacleConfig{
			Fixed:     5,
			Moving:    3,
			StepEvery: 15,
			Margin:    4,
			Leg:       5,
			Radius:    3,
		},
		HighScores: HighScoreConfig{Path: "highscores.toml", Size: 5},
		Warnings:   make([]string, 0),
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// yields the defaults. An empty path does the same.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes TOML from r on top of the defaults. Keys the arena
// does not know about are reported as warnings, not errors.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	for _, key := range md.Undecoded() {
		cfg.addWarning("unknown option %q", key.String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) addWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	slog.Warn("[Config] " + msg)
}

// HasWarnings reports whether loading produced any warnings.
func (c *Config) HasWarnings() bool {
	return len(c.Warnings) > 0
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		bad("grid size must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.FPS <= 0 {
		bad("fps must be positive, got %d", c.Grid.FPS)
	}
	if c.Grid.CellSize <= 0 {
		bad("cell_size must be positive, got %d", c.Grid.CellSize)
	}
	if c.Speed.Player <= 0 || c.Speed.AI <= 0 {
		bad("speeds must be positive, got player=%g ai=%g", c.Speed.Player, c.Speed.AI)
	}
	for name, v := range map[string]int{
		"items.initial":        c.Items.Initial,
		"items.max":            c.Items.Max,
		"items.spawn_every":    c.Items.SpawnEvery,
		"obstacles.fixed":      c.Obstacles.Fixed,
		"obstacles.moving":     c.Obstacles.Moving,
		"obstacles.margin":     c.Obstacles.Margin,
		"obstacles.step_every": c.Obstacles.StepEvery,
		"highscores.size":      c.HighScores.Size,
	} {
		if v < 0 {
			bad("%s must not be negative, got %d", name, v)
		}
	}
	if c.Obstacles.Leg <= 0 || c.Obstacles.Radius <= 0 {
		bad("obstacle leg and radius must be positive, got leg=%d radius=%d", c.Obstacles.Leg, c.Obstacles.Radius)
	}
	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

// Save writes c as TOML to w.
func (c *Config) Save(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
