package arena

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// ScoreEntry is one line in the high score table.
type ScoreEntry struct {
	Name  string `toml:"name"`
	Score int    `toml:"score"`
}

// HighScores is a top-N table persisted as TOML, highest score first.
type HighScores struct {
	Entries []ScoreEntry `toml:"scores"`

	path string
	max  int
}

// NewHighScores returns an empty table for path keeping at most max entries.
func NewHighScores(path string, max int) *HighScores {
	return &HighScores{path: path, max: max}
}

// Path returns the file the table is stored in.
func (h *HighScores) Path() string { return h.path }

// Load replaces the table with the file contents. A missing file leaves the
// table empty.
func (h *HighScores) Load() error {
	var file struct {
		Entries []ScoreEntry `toml:"scores"`
	}
	if _, err := toml.DecodeFile(h.path, &file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.Entries = nil
			return nil
		}
		return fmt.Errorf("failed to load high scores: %w", err)
	}
	h.Entries = file.Entries
	h.sortAndTrim()
	return nil
}

// Save writes the table to its file, creating parent directories.
func (h *HighScores) Save() error {
	if dir := filepath.Dir(h.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create high score directory: %w", err)
		}
	}
	f, err := os.Create(h.path)
	if err != nil {
		return fmt.Errorf("failed to create high score file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(h); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode high scores: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write high scores: %w", err)
	}
	return nil
}

// Qualifies reports whether score would enter the table.
func (h *HighScores) Qualifies(score int) bool {
	if h.max <= 0 {
		return false
	}
	if len(h.Entries) < h.max {
		return true
	}
	return score > h.Entries[len(h.Entries)-1].Score
}

// Add inserts a score, keeping the table sorted and trimmed. It reports
// whether the entry survived the trim.
func (h *HighScores) Add(name string, score int) bool {
	if !h.Qualifies(score) {
		return false
	}
	h.Entries = append(h.Entries, ScoreEntry{Name: name, Score: score})
	h.sortAndTrim()
	return true
}

func (h *HighScores) sortAndTrim() {
	slices.SortStableFunc(h.Entries, func(a, b ScoreEntry) int { return b.Score - a.Score })
	if h.max > 0 && len(h.Entries) > h.max {
		h.Entries = h.Entries[:h.max]
	}
}
