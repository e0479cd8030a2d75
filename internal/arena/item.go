package arena

import (
	"image/color"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

// ItemKind is the closed set of consumables.
type ItemKind uint8

const (
	ItemNormal ItemKind = iota
	ItemSpeedBoost
	ItemSlowdown
	ItemBonus
	itemKindCount
)

type itemSpec struct {
	name   string
	points int
	speed  float64
	color  color.RGBA
}

var itemSpecs = [itemKindCount]itemSpec{
	ItemNormal:     {"normal", 1, 0.002, color.RGBA{R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF}},
	ItemSpeedBoost: {"speed", 2, 0.005, color.RGBA{R: 0xFF, G: 0x44, B: 0x44, A: 0xFF}},
	ItemSlowdown:   {"slow", 1, -0.005, color.RGBA{R: 0x00, G: 0xFF, B: 0x88, A: 0xFF}},
	ItemBonus:      {"bonus", 5, 0, color.RGBA{R: 0xFF, G: 0x66, B: 0xFF, A: 0xFF}},
}

func (k ItemKind) String() string {
	if k < itemKindCount {
		return itemSpecs[k].name
	}
	return "unknown"
}

// Points is the score awarded for eating an item of this kind.
func (k ItemKind) Points() int { return itemSpecs[k].points }

// Color is the draw colour shared by both viewers.
func (k ItemKind) Color() color.RGBA { return itemSpecs[k].color }

// itemKindForRoll maps a roll in [0,100) onto the 60/15/15/10 distribution.
func itemKindForRoll(roll int) ItemKind {
	switch {
	case roll < 60:
		return ItemNormal
	case roll < 75:
		return ItemSpeedBoost
	case roll < 90:
		return ItemSlowdown
	}
	return ItemBonus
}

// Item is a consumable lying on one cell.
type Item struct {
	Kind ItemKind
	Cell grid.Cell
}

// Apply scores the item for s, grows it by one cell and adjusts its speed.
func (it Item) Apply(s *Snake) {
	spec := itemSpecs[it.Kind]
	s.Score += spec.points
	s.Grow(1)
	if spec.speed != 0 {
		s.AdjustSpeed(spec.speed)
	}
}
