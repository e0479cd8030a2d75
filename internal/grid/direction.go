package grid

// Direction is a heading on the grid. Y grows downward, as on screen.
type Direction uint8

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

var directionNames = [...]string{
	None:  "none",
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

// Vector returns the unit step for d.
func (d Direction) Vector() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse heading. None stays None.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return None
}

// Horizontal returns Left or Right for the sign of dx, None for zero.
func Horizontal(dx int) Direction {
	switch {
	case dx > 0:
		return Right
	case dx < 0:
		return Left
	}
	return None
}

// Vertical returns Down or Up for the sign of dy, None for zero.
func Vertical(dy int) Direction {
	switch {
	case dy > 0:
		return Down
	case dy < 0:
		return Up
	}
	return None
}
