package arena

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/google/uuid"

	"github.com/Garsondee/serpent-arena/internal/config"
	"github.com/Garsondee/serpent-arena/internal/grid"
	"github.com/Garsondee/serpent-arena/internal/nav"
)

const (
	PlayerLabel = "P1"
	AILabel     = "AI"

	// reportEvery is how often the reporter samples the match (~1s at 60TPS).
	reportEvery = 60

	itemPlacementAttempts     = 100
	obstaclePlacementAttempts = 1000
)

// Match is one game between the player snake and the AI snake. The window
// viewer, the terminal viewer and the headless report all drive the same
// Step loop.
type Match struct {
	ID        string
	Seed      int64
	Grid      grid.Grid
	Config    *config.Config
	Player    *Snake
	AI        *Snake // nil when the AI is disabled
	Items     []Item
	Obstacles []*Obstacle
	Tick      int
	Log       *EventLog
	Reporter  *Reporter

	rng       *rand.Rand
	logger    *slog.Logger
	pilot     *nav.Pilot
	pilotOpts []nav.PilotOption
	driver    PlayerDriver
	aiEnabled bool
	lockstep  bool
	ended     bool
	closed    bool

	goal    grid.Cell
	hasGoal bool
}

// matchOptionKind controls the pass in which an option is applied.
type matchOptionKind int

const (
	matchOptInfra  matchOptionKind = iota // config, grid size, seed, logging: applied first
	matchOptWorld                         // snakes, obstacles, items: applied once the grid exists
	matchOptDriver                        // player driver: applied last
)

// MatchOption is a builder function applied to a Match during construction.
type MatchOption struct {
	kind matchOptionKind
	fn   func(*Match)
}

// WithConfig replaces the default settings. The config is copied.
func WithConfig(cfg *config.Config) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		c := *cfg
		m.Config = &c
	}}
}

// WithGridSize sets the playfield dimensions in cells.
func WithGridSize(w, h int) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Config.Grid.Width = w
		m.Config.Grid.Height = h
	}}
}

// WithSeed sets the RNG seed for deterministic placement.
func WithSeed(seed int64) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Seed = seed
	}}
}

// WithObstacleCounts sets how many random fixed and moving obstacles spawn.
func WithObstacleCounts(fixed, moving int) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Config.Obstacles.Fixed = fixed
		m.Config.Obstacles.Moving = moving
	}}
}

// WithItemSpawning sets the initial item count and the spawn interval in
// ticks. An interval of zero disables spawning.
func WithItemSpawning(initial, every int) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Config.Items.Initial = initial
		m.Config.Items.SpawnEvery = every
	}}
}

// WithoutAI runs the match with the player alone.
func WithoutAI() MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.aiEnabled = false
	}}
}

// WithEventLog records match events into log instead of a fresh one.
func WithEventLog(log *EventLog) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.Log = log
	}}
}

// WithLogger sets the structured logger for the match and its pilot.
func WithLogger(l *slog.Logger) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.logger = l
	}}
}

// WithSearcher replaces the AI pilot's route searcher.
func WithSearcher(s nav.Searcher) MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.pilotOpts = append(m.pilotOpts, nav.WithSearcher(s))
	}}
}

// WithLockstep makes every tick wait for the AI pilot to answer the query it
// just submitted, so a seed always replays the same match.
func WithLockstep() MatchOption {
	return MatchOption{matchOptInfra, func(m *Match) {
		m.lockstep = true
	}}
}

// WithPlayerStart overrides the player's spawn cell and heading.
func WithPlayerStart(c grid.Cell, d grid.Direction) MatchOption {
	return MatchOption{matchOptWorld, func(m *Match) {
		m.Player = NewSnake(m.Grid, PlayerLabel, c, d, m.Config.Speed.Player)
	}}
}

// WithAIStart overrides the AI's spawn cell and heading.
func WithAIStart(c grid.Cell, d grid.Direction) MatchOption {
	return MatchOption{matchOptWorld, func(m *Match) {
		if m.AI != nil {
			m.AI = NewSnake(m.Grid, AILabel, c, d, m.Config.Speed.AI)
		}
	}}
}

// WithObstacle places an obstacle in addition to the random ones.
func WithObstacle(k ObstacleKind, c grid.Cell) MatchOption {
	return MatchOption{matchOptWorld, func(m *Match) {
		o := m.Config.Obstacles
		m.Obstacles = append(m.Obstacles, NewObstacle(k, m.Grid.Wrap(c), o.Leg, o.Radius))
	}}
}

// WithItem places an item in addition to the random ones.
func WithItem(k ItemKind, c grid.Cell) MatchOption {
	return MatchOption{matchOptWorld, func(m *Match) {
		m.Items = append(m.Items, Item{Kind: k, Cell: m.Grid.Wrap(c)})
	}}
}

// WithPlayerDriver lets d steer the player each tick.
func WithPlayerDriver(d PlayerDriver) MatchOption {
	return MatchOption{matchOptDriver, func(m *Match) {
		m.driver = d
	}}
}

// NewMatch constructs a Match from the given options in ordered passes:
//  1. Infrastructure (config, grid size, seed, logging)
//  2. Snakes at their default spawns
//  3. World overrides (spawns, explicit obstacles and items)
//  4. Random obstacles, then random items
//  5. Player driver
//
// The AI pilot is running when NewMatch returns; Close stops it.
func NewMatch(opts ...MatchOption) *Match {
	m := &Match{
		ID:        uuid.NewString(),
		Seed:      1,
		Config:    config.Default(),
		Log:       NewEventLog(false),
		logger:    slog.New(slog.DiscardHandler),
		driver:    IdleDriver{},
		aiEnabled: true,
	}
	for _, o := range opts {
		if o.kind == matchOptInfra {
			o.fn(m)
		}
	}

	cfg := m.Config
	m.Grid = grid.New(cfg.Grid.Width, cfg.Grid.Height)
	m.rng = rand.New(rand.NewSource(m.Seed)) // #nosec G404 -- game placement, not security
	m.Player = NewSnake(m.Grid, PlayerLabel, m.Grid.Center(), grid.Up, cfg.Speed.Player)
	if m.aiEnabled {
		aiStart := grid.Cell{X: m.Grid.W * 3 / 4, Y: m.Grid.H * 3 / 4}
		m.AI = NewSnake(m.Grid, AILabel, aiStart, grid.Up, cfg.Speed.AI)
	}

	for _, o := range opts {
		if o.kind == matchOptWorld {
			o.fn(m)
		}
	}
	m.generateObstacles(cfg.Obstacles.Fixed, cfg.Obstacles.Moving)
	for i := 0; i < cfg.Items.Initial; i++ {
		m.placeItem()
	}
	for _, o := range opts {
		if o.kind == matchOptDriver {
			o.fn(m)
		}
	}

	m.Reporter = NewReporter(reportWindowTicks)
	m.logger = m.logger.With("match", m.ID)
	m.Log.Add(0, "--", CatMatch, "start",
		fmt.Sprintf("id=%s seed=%d grid=%dx%d obstacles=%d items=%d", m.ID, m.Seed, m.Grid.W, m.Grid.H, len(m.Obstacles), len(m.Items)),
		float64(m.Seed))

	if m.AI != nil {
		popts := append([]nav.PilotOption{nav.WithLogger(m.logger.With("pilot", AILabel))}, m.pilotOpts...)
		m.pilot = nav.NewPilot(m.Grid, popts...)
		m.pilot.Activate()
		m.refreshGoal()
	}
	m.logger.Info("match started", "seed", m.Seed, "width", m.Grid.W, "height", m.Grid.H, "ai", m.AI != nil)
	return m
}

// generateObstacles adds random hazards away from the player's spawn area
// and off existing obstacles.
func (m *Match) generateObstacles(fixed, moving int) {
	o := m.Config.Obstacles
	for i := 0; i < fixed+moving; i++ {
		kind := ObstacleFixed
		if i >= fixed {
			kind = ObstacleKind(1 + m.rng.Intn(3))
		}
		for attempt := 0; attempt < obstaclePlacementAttempts; attempt++ {
			c := grid.Cell{X: m.rng.Intn(m.Grid.W), Y: m.rng.Intn(m.Grid.H)}
			if !m.safeObstacleSpawn(c, o.Margin) {
				continue
			}
			m.Obstacles = append(m.Obstacles, NewObstacle(kind, c, o.Leg, o.Radius))
			break
		}
	}
}

func (m *Match) safeObstacleSpawn(c grid.Cell, margin int) bool {
	center := m.Grid.Center()
	if abs(c.X-center.X) <= margin && abs(c.Y-center.Y) <= margin {
		return false
	}
	return !m.ObstacleAt(c)
}

// placeItem spawns one random item on a free cell. It gives up after a fixed
// number of attempts or when the board already holds the maximum.
func (m *Match) placeItem() bool {
	if len(m.Items) >= m.Config.Items.Max {
		return false
	}
	for attempt := 0; attempt < itemPlacementAttempts; attempt++ {
		c := grid.Cell{X: m.rng.Intn(m.Grid.W), Y: m.rng.Intn(m.Grid.H)}
		kind := itemKindForRoll(m.rng.Intn(100))
		if !m.freeForItem(c) {
			continue
		}
		m.Items = append(m.Items, Item{Kind: kind, Cell: c})
		m.Log.Add(m.Tick, "--", CatItem, "spawn", fmt.Sprintf("%s at %s", kind, c), float64(kind.Points()))
		return true
	}
	return false
}

func (m *Match) freeForItem(c grid.Cell) bool {
	if m.Player.Contains(c) || (m.AI != nil && m.AI.Contains(c)) || m.ObstacleAt(c) {
		return false
	}
	return !slices.ContainsFunc(m.Items, func(it Item) bool { return it.Cell == c })
}

// ObstacleAt reports whether any obstacle currently covers c.
func (m *Match) ObstacleAt(c grid.Cell) bool {
	for _, o := range m.Obstacles {
		if o.Cell == c {
			return true
		}
	}
	return false
}

// Snakes returns the snakes taking part, player first.
func (m *Match) Snakes() []*Snake {
	if m.AI == nil {
		return []*Snake{m.Player}
	}
	return []*Snake{m.Player, m.AI}
}

// Over reports whether no snake is left alive.
func (m *Match) Over() bool {
	return !m.Player.Alive && (m.AI == nil || !m.AI.Alive)
}

// SteerPlayer turns the player snake, as a keypress does.
func (m *Match) SteerPlayer(d grid.Direction) {
	m.Player.Turn(d)
}

// Step runs one simulation tick. It returns false once the match is over.
func (m *Match) Step() bool {
	if m.Over() {
		return false
	}
	m.Tick++
	cfg := m.Config

	if every(m.Tick, cfg.Items.SpawnEvery) && m.placeItem() {
		m.refreshGoal()
	}
	if every(m.Tick, cfg.Obstacles.StepEvery) {
		for _, o := range m.Obstacles {
			if !o.Moving() {
				continue
			}
			o.Step(m.Grid)
			m.Log.AddVerbose(m.Tick, "--", CatObstacle, "step", fmt.Sprintf("%s -> %s", o.Kind, o.Cell), 0)
		}
	}

	if m.Player.Alive {
		m.updatePlayer()
	}
	if m.AI != nil && m.AI.Alive {
		m.updateAI()
	}

	if m.Tick%reportEvery == 0 {
		m.Reporter.Collect(m)
	}
	if m.Over() && !m.ended {
		m.ended = true
		m.Log.Add(m.Tick, "--", CatMatch, "over", m.scoreLine(), 0)
		m.logger.Info("match over", "tick", m.Tick, "player", m.Player.Score, "ai", m.aiScore())
	}
	return true
}

func (m *Match) updatePlayer() {
	p := m.Player
	if d, ok := m.driver.Steer(m); ok {
		p.Turn(d)
	}
	if p.Update() {
		m.Log.AddVerbose(m.Tick, p.Label, CatMove, "head", p.Head().String(), p.Speed)
	}
	if !p.Alive {
		m.noteDeath(p)
		return
	}
	head := p.Head()
	if m.ObstacleAt(head) {
		m.kill(p, "obstacle")
		return
	}
	if m.AI != nil && m.AI.Alive && m.AI.Contains(head) {
		m.kill(p, "snake")
		return
	}
	m.eat(p)
}

func (m *Match) updateAI() {
	ai := m.AI
	head := ai.Head()
	m.pilot.SetOrigin(head)
	m.pilot.SetOccupancy(m.occupancyFor(ai, m.Player))
	if m.lockstep {
		m.pilot.Settle()
	}
	if d, ok := m.pilot.AdvanceDirection(head); ok {
		ai.Turn(d)
	}
	if ai.Update() {
		m.Log.AddVerbose(m.Tick, ai.Label, CatMove, "head", ai.Head().String(), ai.Speed)
	}
	if !ai.Alive {
		m.noteDeath(ai)
		return
	}
	head = ai.Head()
	if m.ObstacleAt(head) {
		m.kill(ai, "obstacle")
		return
	}
	if m.Player.Alive && m.Player.Contains(head) {
		m.kill(ai, "snake")
		return
	}
	m.eat(ai)
}

// occupancyFor builds the blocked-cell snapshot self plans against: every
// obstacle, its own trailing body and the other snake's head and body.
func (m *Match) occupancyFor(self, other *Snake) nav.Occupancy {
	occ := nav.NewOccupancy(m.Grid)
	for _, o := range m.Obstacles {
		occ.Block(o.Cell)
	}
	for _, c := range self.Body() {
		occ.Block(c)
	}
	if other != nil {
		occ.Block(other.Head())
		for _, c := range other.Body() {
			occ.Block(c)
		}
	}
	return occ
}

func (m *Match) eat(s *Snake) {
	head := s.Head()
	i := slices.IndexFunc(m.Items, func(it Item) bool { return it.Cell == head })
	if i < 0 {
		return
	}
	it := m.Items[i]
	it.Apply(s)
	m.Items = slices.Delete(m.Items, i, i+1)
	m.Log.Add(m.Tick, s.Label, CatItem, "eat", fmt.Sprintf("%s at %s", it.Kind, it.Cell), float64(s.Score))
	m.refreshGoal()
}

// nearestItem returns the item closest to from by plain Manhattan distance.
// Ties keep the earlier item.
func (m *Match) nearestItem(from grid.Cell) (grid.Cell, bool) {
	best, found := grid.Cell{}, false
	bestDist := 0
	for _, it := range m.Items {
		d := abs(it.Cell.X-from.X) + abs(it.Cell.Y-from.Y)
		if !found || d < bestDist {
			best, bestDist, found = it.Cell, d, true
		}
	}
	return best, found
}

// refreshGoal points the AI pilot at the nearest item. With no items left
// the previous goal stands.
func (m *Match) refreshGoal() {
	if m.pilot == nil || !m.AI.Alive {
		return
	}
	c, ok := m.nearestItem(m.AI.Head())
	if !ok {
		return
	}
	if !m.hasGoal || c != m.goal {
		m.Log.Add(m.Tick, m.AI.Label, CatGoal, "target", c.String(), float64(m.Grid.WrapDistance(m.AI.Head(), c)))
	}
	m.goal, m.hasGoal = c, true
	m.pilot.SetOrigin(m.AI.Head())
	m.pilot.SetGoal(c)
}

func (m *Match) kill(s *Snake, cause string) {
	s.kill(m.Tick, cause)
	m.noteDeath(s)
}

func (m *Match) noteDeath(s *Snake) {
	s.DeathTick = m.Tick
	m.Log.Add(m.Tick, s.Label, CatDeath, s.DeathCause, fmt.Sprintf("at %s size=%d score=%d", s.Head(), s.Size(), s.Score), float64(s.Score))
	m.logger.Debug("snake died", "snake", s.Label, "cause", s.DeathCause, "tick", m.Tick)
}

// RunTicks advances the match up to n ticks and returns how many ran.
func (m *Match) RunTicks(n int) int {
	ran := 0
	for ran < n && m.Step() {
		ran++
	}
	return ran
}

// RunUntil advances the match up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (m *Match) RunUntil(predicate func(*Match) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		if !m.Step() {
			break
		}
		if predicate(m) {
			return m.Tick
		}
	}
	return -1
}

// Goal returns the cell the AI pilot is currently steering toward.
func (m *Match) Goal() (grid.Cell, bool) {
	return m.goal, m.hasGoal
}

// Route returns the AI's published route and cursor for drawing.
func (m *Match) Route() (nav.Route, int) {
	if m.pilot == nil {
		return nil, 0
	}
	return m.pilot.Route()
}

// PilotStats returns the AI pilot counters, zero when the AI is disabled.
func (m *Match) PilotStats() nav.Stats {
	if m.pilot == nil {
		return nav.Stats{}
	}
	return m.pilot.Stats()
}

// Close stops the AI pilot and any driver that runs a worker. It is safe to
// call more than once.
func (m *Match) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.pilot != nil {
		m.pilot.Deactivate()
	}
	if c, ok := m.driver.(interface{ Close() }); ok {
		c.Close()
	}
}

func (m *Match) aiScore() int {
	if m.AI == nil {
		return 0
	}
	return m.AI.Score
}

func (m *Match) scoreLine() string {
	if m.AI == nil {
		return fmt.Sprintf("player=%d", m.Player.Score)
	}
	return fmt.Sprintf("player=%d ai=%d", m.Player.Score, m.AI.Score)
}

func every(tick, n int) bool {
	return n > 0 && tick%n == 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
