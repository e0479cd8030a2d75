package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesStockArena(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 32, cfg.Grid.Width)
	assert.Equal(t, 32, cfg.Grid.Height)
	assert.Equal(t, 60, cfg.Grid.FPS)
	assert.InDelta(t, 0.1, cfg.Speed.Player, 1e-9)
	assert.InDelta(t, 0.1, cfg.Speed.AI, 1e-9)
	assert.Equal(t, 5, cfg.Obstacles.Fixed)
	assert.Equal(t, 3, cfg.Obstacles.Moving)
	assert.Equal(t, 15, cfg.Obstacles.StepEvery)
	assert.Equal(t, 5, cfg.Items.Max)
	assert.Equal(t, "highscores.toml", cfg.HighScores.Path)
	assert.False(t, cfg.HasWarnings())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Grid.Width)
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.toml")
	body := `
[grid]
width = 48

[speed]
ai = 0.25

[obstacles]
moving = 0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.Grid.Width)
	assert.Equal(t, 32, cfg.Grid.Height, "untouched keys keep defaults")
	assert.InDelta(t, 0.25, cfg.Speed.AI, 1e-9)
	assert.InDelta(t, 0.1, cfg.Speed.Player, 1e-9)
	assert.Zero(t, cfg.Obstacles.Moving)
	assert.False(t, cfg.HasWarnings())
}

func TestLoadFromReader_UnknownKeysBecomeWarnings(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(`
[grid]
width = 20
depth = 3

[weather]
rain = true
`))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Grid.Width)
	require.True(t, cfg.HasWarnings())
	joined := strings.Join(cfg.Warnings, "\n")
	assert.Contains(t, joined, "grid.depth")
	assert.Contains(t, joined, "weather")
}

func TestLoadFromReader_RejectsMalformedToml(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("[grid\nwidth = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestLoadFromReader_RejectsWrongType(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("[grid]\nwidth = \"wide\"\n"))
	require.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Grid.Width = 0
	cfg.Speed.AI = -1
	cfg.Items.Max = -2

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "grid size must be positive")
	assert.Contains(t, msg, "speeds must be positive")
	assert.Contains(t, msg, "items.max must not be negative")
}

func TestLoadFromReader_InvalidValuesFail(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("[speed]\nplayer = 0.0\n"))
	require.ErrorContains(t, err, "invalid config")
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	cfg := Default()
	cfg.Grid.Width = 40
	cfg.HighScores.Path = "scores/alt.toml"

	var buf bytes.Buffer
	require.NoError(t, cfg.Save(&buf))
	assert.NotContains(t, buf.String(), "Warnings")

	back, err := LoadFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
