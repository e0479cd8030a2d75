package arena

import (
	"math"

	"github.com/Garsondee/serpent-arena/internal/grid"
)

// ObstacleKind is the closed set of hazard behaviours.
type ObstacleKind uint8

const (
	ObstacleFixed ObstacleKind = iota
	ObstacleHorizontal
	ObstacleVertical
	ObstacleCircular
)

func (k ObstacleKind) String() string {
	switch k {
	case ObstacleFixed:
		return "fixed"
	case ObstacleHorizontal:
		return "horizontal"
	case ObstacleVertical:
		return "vertical"
	case ObstacleCircular:
		return "circular"
	}
	return "unknown"
}

const orbitStep = 0.1 // radians per step

// Obstacle is a single-cell hazard. Moving kinds advance one step each time
// Step is called; positions wrap on the torus.
type Obstacle struct {
	Kind ObstacleKind
	Cell grid.Cell

	center grid.Cell
	dir    int
	steps  int
	leg    int
	radius float64
	angle  float64
}

// NewObstacle creates an obstacle of kind k at c. leg is how many steps a
// linear mover takes before reversing; radius is the circular orbit size.
func NewObstacle(k ObstacleKind, c grid.Cell, leg, radius int) *Obstacle {
	return &Obstacle{
		Kind:   k,
		Cell:   c,
		center: c,
		dir:    1,
		leg:    max(1, leg),
		radius: float64(radius),
	}
}

// Step advances the obstacle once on grid g.
func (o *Obstacle) Step(g grid.Grid) {
	switch o.Kind {
	case ObstacleHorizontal:
		o.bounce()
		o.Cell = g.Wrap(grid.Cell{X: o.Cell.X + o.dir, Y: o.Cell.Y})
	case ObstacleVertical:
		o.bounce()
		o.Cell = g.Wrap(grid.Cell{X: o.Cell.X, Y: o.Cell.Y + o.dir})
	case ObstacleCircular:
		o.angle += orbitStep
		if o.angle > 2*math.Pi {
			o.angle -= 2 * math.Pi
		}
		o.Cell = g.Wrap(grid.Cell{
			X: o.center.X + int(o.radius*math.Cos(o.angle)),
			Y: o.center.Y + int(o.radius*math.Sin(o.angle)),
		})
	}
}

func (o *Obstacle) bounce() {
	o.steps++
	if o.steps >= o.leg {
		o.dir = -o.dir
		o.steps = 0
	}
}

// Moving reports whether Step ever changes the position.
func (o *Obstacle) Moving() bool { return o.Kind != ObstacleFixed }
