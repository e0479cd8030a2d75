package arena

import (
	"github.com/Garsondee/serpent-arena/internal/grid"
)

const minSpeed = 0.05

// Snake is one player or AI body on the torus. The head advances by Speed
// cells per tick; a whole cell of accumulated progress moves it one step.
type Snake struct {
	Label string
	Dir   grid.Direction
	Speed float64
	Score int
	Alive bool

	DeathTick  int
	DeathCause string

	g        grid.Grid
	head     grid.Cell
	body     []grid.Cell // tail first, head excluded
	progress float64
	growth   int
}

// NewSnake places a one-cell snake at start heading in dir.
func NewSnake(g grid.Grid, label string, start grid.Cell, dir grid.Direction, speed float64) *Snake {
	return &Snake{
		Label: label,
		Dir:   dir,
		Speed: speed,
		Alive: true,
		g:     g,
		head:  g.Wrap(start),
	}
}

// Head returns the cell the head currently occupies.
func (s *Snake) Head() grid.Cell { return s.head }

// Body returns the trailing cells, tail first, head excluded.
func (s *Snake) Body() []grid.Cell { return s.body }

// Size counts the head plus the body.
func (s *Snake) Size() int { return len(s.body) + 1 }

// Contains reports whether c is covered by the head or any body cell.
func (s *Snake) Contains(c grid.Cell) bool {
	c = s.g.Wrap(c)
	if c == s.head {
		return true
	}
	for _, b := range s.body {
		if b == c {
			return true
		}
	}
	return false
}

// Turn changes heading. A snake longer than one cell cannot reverse into its
// own neck.
func (s *Snake) Turn(d grid.Direction) {
	if d == grid.None {
		return
	}
	if s.Size() > 1 && d == s.Dir.Opposite() {
		return
	}
	s.Dir = d
}

// Grow queues n extra body cells; each is added on a later move.
func (s *Snake) Grow(n int) {
	if n > 0 {
		s.growth += n
	}
}

// AdjustSpeed adds delta to the speed, never dropping below the floor.
func (s *Snake) AdjustSpeed(delta float64) {
	s.Speed = max(minSpeed, s.Speed+delta)
}

// Update advances the head and reports whether it entered a new cell.
// Moving into the snake's own body kills it.
func (s *Snake) Update() bool {
	if !s.Alive {
		return false
	}
	s.progress += s.Speed
	moved := false
	for s.progress >= 1 && s.Alive {
		s.progress--
		prev := s.head
		s.head = s.g.Step(s.head, s.Dir)
		s.body = append(s.body, prev)
		if s.growth > 0 {
			s.growth--
		} else {
			s.body = s.body[1:]
		}
		for _, b := range s.body {
			if b == s.head {
				s.Alive = false
				s.DeathCause = "self"
				break
			}
		}
		moved = true
	}
	return moved
}

func (s *Snake) kill(tick int, cause string) {
	if !s.Alive {
		return
	}
	s.Alive = false
	s.DeathTick = tick
	s.DeathCause = cause
}
