package arena

import (
	"github.com/Garsondee/serpent-arena/internal/grid"
	"github.com/Garsondee/serpent-arena/internal/nav"
)

// PlayerDriver steers the player snake once per tick. Keyboard play does not
// need one: the viewers call Match.SteerPlayer as keys arrive.
type PlayerDriver interface {
	Steer(m *Match) (grid.Direction, bool)
}

// IdleDriver never turns; the player keeps its heading.
type IdleDriver struct{}

func (IdleDriver) Steer(*Match) (grid.Direction, bool) { return grid.None, false }

// PilotDriver plays the player with a second, independent pilot that chases
// the item nearest the player head. It is not coordinated with the AI.
type PilotDriver struct {
	opts    []nav.PilotOption
	pilot   *nav.Pilot
	goal    grid.Cell
	hasGoal bool
}

// NewPilotDriver returns a driver whose pilot is built with opts on first use.
func NewPilotDriver(opts ...nav.PilotOption) *PilotDriver {
	return &PilotDriver{opts: opts}
}

func (d *PilotDriver) Steer(m *Match) (grid.Direction, bool) {
	if d.pilot == nil {
		d.pilot = nav.NewPilot(m.Grid, d.opts...)
		d.pilot.Activate()
	}
	head := m.Player.Head()
	d.pilot.SetOrigin(head)
	if c, ok := m.nearestItem(head); ok && (!d.hasGoal || c != d.goal) {
		d.goal, d.hasGoal = c, true
		m.Log.Add(m.Tick, m.Player.Label, CatGoal, "target", c.String(), float64(m.Grid.WrapDistance(head, c)))
		d.pilot.SetGoal(c)
	}
	d.pilot.SetOccupancy(m.occupancyFor(m.Player, m.AI))
	if m.lockstep {
		d.pilot.Settle()
	}
	return d.pilot.AdvanceDirection(head)
}

// Stats returns the driver pilot's counters.
func (d *PilotDriver) Stats() nav.Stats {
	if d.pilot == nil {
		return nav.Stats{}
	}
	return d.pilot.Stats()
}

// Close stops the driver's pilot.
func (d *PilotDriver) Close() {
	if d.pilot != nil {
		d.pilot.Deactivate()
	}
}
