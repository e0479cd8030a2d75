package arena

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/serpent-arena/internal/config"
	"github.com/Garsondee/serpent-arena/internal/grid"
)

// hudHeight is the strip below the board that holds scores and key help.
const hudHeight = 56

var (
	boardColor    = color.RGBA{R: 18, G: 18, B: 22, A: 255}
	gridColor     = color.RGBA{R: 30, G: 30, B: 38, A: 255}
	fixedColor    = color.RGBA{R: 130, G: 130, B: 140, A: 255}
	movingColor   = color.RGBA{R: 200, G: 90, B: 40, A: 255}
	routeColor    = color.RGBA{R: 120, G: 170, B: 255, A: 140}
	goalColor     = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	deadTint      = color.RGBA{R: 90, G: 40, B: 40, A: 255}
	statusColor   = color.RGBA{R: 255, G: 220, B: 120, A: 255}
	hudTextColor  = color.RGBA{R: 210, G: 215, B: 225, A: 255}
	hudPanelColor = color.RGBA{R: 8, G: 10, B: 14, A: 230}
)

var simSpeeds = []float64{0, 0.5, 1, 2, 4}

// Viewer shows a match in an ebiten window and lets a human steer the
// player. It implements ebiten.Game.
type Viewer struct {
	cfg    *config.Config
	opts   []MatchOption
	scores *HighScores
	name   string
	logger *slog.Logger

	m     *Match
	panel *EventPanel
	seen  int // event log entries already pushed to the panel
	face  text.Face

	cell          int
	width, height int

	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64 // fractional tick accumulator for sub-1x speeds
	showHUD   bool
	showRoute bool
	prevKeys  map[ebiten.Key]bool

	recorded    bool
	status      string
	statusUntil time.Time
}

// NewViewer starts a match from cfg plus opts. scores may be nil to skip the
// high score table; name labels the player's entries in it.
func NewViewer(cfg *config.Config, scores *HighScores, name string, logger *slog.Logger, opts ...MatchOption) *Viewer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &Viewer{
		cfg:       cfg,
		opts:      opts,
		scores:    scores,
		name:      name,
		logger:    logger,
		face:      text.NewGoXFace(basicfont.Face7x13),
		cell:      cfg.Grid.CellSize,
		simSpeed:  1,
		showHUD:   true,
		showRoute: true,
		prevKeys:  make(map[ebiten.Key]bool),
	}
	v.restart()
	return v
}

// Match returns the match currently on screen.
func (v *Viewer) Match() *Match { return v.m }

// Close stops the running match.
func (v *Viewer) Close() {
	if v.m != nil {
		v.m.Close()
	}
}

func (v *Viewer) restart() {
	v.Close()
	opts := append([]MatchOption{
		WithConfig(v.cfg),
		WithSeed(time.Now().UnixNano()),
		WithLogger(v.logger),
	}, v.opts...)
	v.m = NewMatch(opts...)
	v.width = v.m.Grid.W*v.cell + panelWidth
	v.height = v.m.Grid.H*v.cell + hudHeight
	v.panel = NewEventPanel()
	v.seen = 0
	v.recorded = false
	v.drainEvents()
}

func (v *Viewer) Update() error {
	// Handle input every frame regardless of sim speed.
	v.handleInput()

	if v.simSpeed > 0 && !v.m.Over() {
		v.tickAccum += v.simSpeed
		for v.tickAccum >= 1.0 {
			v.tickAccum -= 1.0
			v.m.Step()
		}
		v.drainEvents()
	}
	if v.m.Over() && !v.recorded {
		v.recorded = true
		v.recordScore()
	}
	return nil
}

func (v *Viewer) drainEvents() {
	entries := v.m.Log.Entries()
	for _, e := range entries[v.seen:] {
		if e.Category == CatMove || e.Category == CatObstacle {
			continue
		}
		v.panel.Add(e)
	}
	v.seen = len(entries)
}

func (v *Viewer) recordScore() {
	if v.scores == nil {
		return
	}
	score := v.m.Player.Score
	if !v.scores.Add(v.name, score) {
		v.setStatus(fmt.Sprintf("Game over - %d points", score))
		return
	}
	if err := v.scores.Save(); err != nil {
		v.logger.Warn("high score save failed", "err", err)
		v.setStatus("High score not saved")
		return
	}
	v.setStatus(fmt.Sprintf("New high score: %d", score))
}

func (v *Viewer) setStatus(s string) {
	v.status = s
	v.statusUntil = time.Now().Add(4 * time.Second)
}

// handleInput processes steering and toggle keypresses (edge-triggered).
func (v *Viewer) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !v.prevKeys[k]
	}

	steer := []struct {
		keys [2]ebiten.Key
		dir  grid.Direction
	}{
		{[2]ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}, grid.Up},
		{[2]ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}, grid.Down},
		{[2]ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}, grid.Left},
		{[2]ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}, grid.Right},
	}
	for _, s := range steer {
		for _, k := range s.keys {
			if pressed(k) {
				v.m.SteerPlayer(s.dir)
			}
		}
	}

	if pressed(ebiten.KeyH) {
		v.showHUD = !v.showHUD
	}
	if pressed(ebiten.KeyR) {
		v.showRoute = !v.showRoute
	}
	if pressed(ebiten.KeyC) {
		if err := CopyToClipboard(v.m.PilotReport(240)); err != nil {
			v.logger.Warn("clipboard copy failed", "err", err)
			v.setStatus("Clipboard unavailable")
		} else {
			v.setStatus("Pilot report copied")
		}
	}
	if pressed(ebiten.KeyEnter) && v.m.Over() {
		v.restart()
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	if pressed(ebiten.KeyP) {
		if v.simSpeed > 0 {
			v.simSpeed = 0
		} else {
			v.simSpeed = 1
		}
	}
	if pressed(ebiten.KeyComma) {
		for i, s := range simSpeeds {
			if s >= v.simSpeed && i > 0 {
				v.simSpeed = simSpeeds[i-1]
				break
			}
		}
	}
	if pressed(ebiten.KeyPeriod) {
		for i, s := range simSpeeds {
			if s <= v.simSpeed && i < len(simSpeeds)-1 && simSpeeds[i+1] > v.simSpeed {
				v.simSpeed = simSpeeds[i+1]
				break
			}
		}
	}

	v.prevKeys = currentKeys
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 6, G: 6, B: 8, A: 255})
	v.drawBoard(screen)
	if v.showRoute {
		v.drawRoute(screen)
	}
	v.panel.Draw(screen, v.width-panelWidth, v.height)
	v.drawHUD(screen)
}

func (v *Viewer) fillCell(screen *ebiten.Image, c grid.Cell, inset float32, col color.Color) {
	cs := float32(v.cell)
	vector.FillRect(screen, float32(c.X)*cs+inset, float32(c.Y)*cs+inset, cs-2*inset, cs-2*inset, col, false)
}

func (v *Viewer) drawBoard(screen *ebiten.Image) {
	m := v.m
	bw := float32(m.Grid.W * v.cell)
	bh := float32(m.Grid.H * v.cell)
	vector.FillRect(screen, 0, 0, bw, bh, boardColor, false)
	for x := 0; x <= m.Grid.W; x++ {
		xf := float32(x * v.cell)
		vector.StrokeLine(screen, xf, 0, xf, bh, 1, gridColor, false)
	}
	for y := 0; y <= m.Grid.H; y++ {
		yf := float32(y * v.cell)
		vector.StrokeLine(screen, 0, yf, bw, yf, 1, gridColor, false)
	}

	for _, o := range m.Obstacles {
		col := fixedColor
		if o.Moving() {
			col = movingColor
		}
		v.fillCell(screen, o.Cell, 1, col)
	}
	for _, it := range m.Items {
		v.fillCell(screen, it.Cell, float32(v.cell)/4, it.Kind.Color())
	}
	for _, s := range m.Snakes() {
		col := actorColor(s.Label)
		if !s.Alive {
			col = deadTint
		}
		body := col
		body.A = 170
		for _, c := range s.Body() {
			v.fillCell(screen, c, 1, body)
		}
		v.fillCell(screen, s.Head(), 0, col)
	}
}

func (v *Viewer) drawRoute(screen *ebiten.Image) {
	m := v.m
	if m.AI == nil || !m.AI.Alive {
		return
	}
	route, cursor := m.Route()
	cs := float32(v.cell)
	half := cs / 2
	prev := m.AI.Head()
	for _, c := range route[min(cursor, len(route)):] {
		// Skip the segment that crosses the seam; it would span the board.
		if abs(prev.X-c.X)+abs(prev.Y-c.Y) == 1 {
			vector.StrokeLine(screen, float32(prev.X)*cs+half, float32(prev.Y)*cs+half, float32(c.X)*cs+half, float32(c.Y)*cs+half, 2, routeColor, false)
		}
		prev = c
	}
	if g, ok := m.Goal(); ok {
		vector.StrokeRect(screen, float32(g.X)*cs+1, float32(g.Y)*cs+1, cs-2, cs-2, 1.5, goalColor, false)
	}
}

func (v *Viewer) hudText(screen *ebiten.Image, s string, x, y float64, col color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	text.Draw(screen, s, v.face, op)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	m := v.m
	top := float32(v.height - hudHeight)
	boardW := float32(v.width - panelWidth)
	vector.FillRect(screen, 0, top, boardW, hudHeight, hudPanelColor, false)
	vector.StrokeLine(screen, 0, top, boardW, top, 1, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	speedStr := "1x"
	switch {
	case v.simSpeed == 0:
		speedStr = "PAUSED"
	case v.simSpeed != 1:
		speedStr = fmt.Sprintf("%gx", v.simSpeed)
	}
	score := fmt.Sprintf("%s %d", m.Player.Label, m.Player.Score)
	if m.AI != nil {
		score += fmt.Sprintf("   %s %d", m.AI.Label, m.AI.Score)
	}
	v.hudText(screen, score, 6, float64(top)+4, hudTextColor)
	v.hudText(screen, fmt.Sprintf("T=%d  %s  %.0f fps", m.Tick, speedStr, ebiten.ActualFPS()), 6, float64(top)+20, hudTextColor)

	if v.showHUD {
		st := m.PilotStats()
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("pilot: search=%d found=%d empty=%d len=%d took=%s", st.Searches, st.Found, st.Empty, st.LastRouteLen, st.LastDuration.Round(time.Microsecond)),
			180, int(top)+2)
		ebitenutil.DebugPrintAt(screen, "arrows/WASD steer  P pause  ,/. speed  R route  C copy  H hud", 180, int(top)+18)
	}

	msg := ""
	if time.Now().Before(v.statusUntil) {
		msg = v.status
	}
	if m.Over() {
		if msg != "" {
			msg += "  "
		}
		msg += "Enter = new match"
	}
	if msg != "" {
		v.hudText(screen, msg, 6, float64(top)+36, statusColor)
	}
}

func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}
