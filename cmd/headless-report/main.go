package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/serpent-arena/internal/arena"
	"github.com/Garsondee/serpent-arena/internal/config"
	"github.com/Garsondee/serpent-arena/internal/nav"
)

// pilotReportTicks is how much of the event log the copied report covers.
const pilotReportTicks = 300

type runStats struct {
	runIndex int
	seed     int64
	result   arena.MatchResult

	firstEatPlayer int
	firstEatAI     int
	firstDeathTick int
	firstGoalTick  int

	spawns      int
	goalChanges int
	eatenByKind map[string]int

	windowSummary *arena.WindowReport
	report        string
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var parallel int
	var configPath string
	var player string
	var copyReport bool
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless matches")
	flag.IntVar(&ticks, "ticks", 3600, "tick limit per match")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&parallel, "parallel", 4, "matches running at once")
	flag.StringVar(&configPath, "config", "", "optional TOML config")
	flag.StringVar(&player, "player", "pilot", "player snake driver (pilot, idle)")
	flag.BoolVar(&copyReport, "copy", false, "copy the last run's pilot report to the clipboard")
	flag.BoolVar(&verbose, "v", false, "debug logging on stderr")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if parallel <= 0 {
		fmt.Println("error: -parallel must be > 0")
		return
	}
	if player != "pilot" && player != "idle" {
		fmt.Printf("error: unsupported player driver %q (supported: pilot, idle)\n", player)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	batch := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("batch", batch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("=== Headless Arena Report ===\n")
	fmt.Printf("batch=%s runs=%d ticks=%d seed_base=%d seed_step=%d parallel=%d player=%s grid=%dx%d\n\n",
		batch, runs, ticks, seedBase, seedStep, parallel, player, cfg.Grid.Width, cfg.Grid.Height)

	all := make([]runStats, runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		withReport := copyReport && i == runs-1
		g.Go(func() error {
			rs, err := runMatch(gctx, cfg, logger, i+1, seed, ticks, player, withReport)
			if err != nil {
				return fmt.Errorf("run %d (seed=%d): %w", i+1, seed, err)
			}
			all[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	for _, rs := range all {
		printRun(rs)
	}
	printAggregate(all)

	if copyReport {
		if err := arena.CopyToClipboard(all[runs-1].report); err != nil {
			fmt.Printf("error: copy pilot report: %v\n", err)
			return
		}
		fmt.Println("\npilot report for the last run copied to clipboard")
	}
}

func runMatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, runIndex int, seed int64, ticks int, player string, withReport bool) (runStats, error) {
	opts := []arena.MatchOption{
		arena.WithConfig(cfg),
		arena.WithSeed(seed),
		arena.WithLockstep(),
		arena.WithLogger(logger.With("run", runIndex)),
	}
	if player == "pilot" {
		driver := arena.NewPilotDriver(nav.WithLogger(logger.With("run", runIndex, "pilot", arena.PlayerLabel)))
		opts = append(opts, arena.WithPlayerDriver(driver))
	}
	m := arena.NewMatch(opts...)
	defer m.Close()

	for m.Tick < ticks && m.Step() {
		if err := ctx.Err(); err != nil {
			return runStats{}, err
		}
	}

	entries := m.Log.Entries()
	eatenByKind := map[string]int{}
	for _, e := range m.Log.Filter(arena.CatItem, "eat") {
		eatenByKind[itemKind(e.Value)]++
	}

	rs := runStats{
		runIndex:       runIndex,
		seed:           seed,
		result:         m.Summary(),
		firstEatPlayer: firstActorTick(entries, arena.PlayerLabel, arena.CatItem, "eat"),
		firstEatAI:     firstActorTick(entries, arena.AILabel, arena.CatItem, "eat"),
		firstDeathTick: firstTick(entries, arena.CatDeath, "", ""),
		firstGoalTick:  firstTick(entries, arena.CatGoal, "target", ""),
		spawns:         m.Log.CountCategory(arena.CatItem, "spawn"),
		goalChanges:    m.Log.CountCategory(arena.CatGoal, "target"),
		eatenByKind:    eatenByKind,
		windowSummary:  m.Reporter.WindowSummary(),
	}
	if withReport {
		rs.report = m.PilotReport(pilotReportTicks)
	}
	return rs, nil
}

// firstTick returns the tick of the first entry matching category, key (any
// key when empty) and containing the substring, or -1.
func firstTick(entries []arena.EventEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || (key != "" && e.Key != key) {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func firstActorTick(entries []arena.EventEntry, actor, category, key string) int {
	for _, e := range entries {
		if e.Actor == actor && e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

// itemKind pulls the kind name out of an "eat" value such as "bonus at (3,4)".
func itemKind(value string) string {
	kind, _, _ := strings.Cut(value, " at ")
	return kind
}

// outcome classifies a finished run for the aggregate table.
func outcome(r arena.MatchResult) string {
	if !r.Over && len(r.Deaths) == 0 {
		return "timeout"
	}
	switch r.Winner() {
	case arena.PlayerLabel:
		return "player_win"
	case arena.AILabel:
		return "ai_win"
	default:
		return "draw"
	}
}

func printRun(rs runStats) {
	r := rs.result
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("%s\n", r)
	fmt.Printf("outcome=%s ticks=%d over=%t\n", outcome(r), r.Ticks, r.Over)
	fmt.Printf("phase_markers: first_goal=%d first_eat_player=%d first_eat_ai=%d first_death=%d\n",
		rs.firstGoalTick, rs.firstEatPlayer, rs.firstEatAI, rs.firstDeathTick)
	fmt.Printf("event_totals: spawn=%d goal_change=%d eaten_player=%d eaten_ai=%d\n",
		rs.spawns, rs.goalChanges, r.Eaten[arena.PlayerLabel], r.Eaten[arena.AILabel])
	fmt.Printf("eaten_by_kind: %s\n", joinCounts(rs.eatenByKind))
	for _, d := range r.Deaths {
		fmt.Printf("death: %s tick=%d cause=%s\n", d.Label, d.Tick, d.Cause)
	}
	fmt.Printf("pilot: submits=%d searches=%d found=%d empty=%d\n",
		r.Pilot.Submits, r.Pilot.Searches, r.Pilot.Found, r.Pilot.Empty)
	if rs.windowSummary != nil {
		fmt.Print(rs.windowSummary.Format())
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalPlayer := 0
	totalAI := 0
	totalTicks := 0
	totalSpawns := 0
	totalGoals := 0
	var totalSubmits, totalSearches, totalEmpty uint64

	eatPlayerTicks := make([]int, 0, len(all))
	eatAITicks := make([]int, 0, len(all))
	deathTicks := make([]int, 0, len(all))
	outcomes := map[string]int{}
	causes := map[string]int{}
	kinds := map[string]int{}

	for _, rs := range all {
		r := rs.result
		totalPlayer += r.Score(arena.PlayerLabel)
		totalAI += r.Score(arena.AILabel)
		totalTicks += r.Ticks
		totalSpawns += rs.spawns
		totalGoals += rs.goalChanges
		totalSubmits += r.Pilot.Submits
		totalSearches += r.Pilot.Searches
		totalEmpty += r.Pilot.Empty
		if rs.firstEatPlayer >= 0 {
			eatPlayerTicks = append(eatPlayerTicks, rs.firstEatPlayer)
		}
		if rs.firstEatAI >= 0 {
			eatAITicks = append(eatAITicks, rs.firstEatAI)
		}
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
		outcomes[outcome(r)]++
		for _, d := range r.Deaths {
			causes[d.Label+":"+d.Cause]++
		}
		for k, n := range rs.eatenByKind {
			kinds[k] += n
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", n)
	fmt.Printf("outcomes: %s\n", joinCounts(outcomes))
	fmt.Printf("avg_per_run: ticks=%.1f player_score=%.1f ai_score=%.1f spawn=%.1f goal_change=%.1f\n",
		avg(totalTicks, n), avg(totalPlayer, n), avg(totalAI, n), avg(totalSpawns, n), avg(totalGoals, n))
	fmt.Printf("phase_marker_avg_ticks: first_eat_player=%s first_eat_ai=%s first_death=%s\n",
		avgTickString(eatPlayerTicks), avgTickString(eatAITicks), avgTickString(deathTicks))
	fmt.Printf("death_causes: %s\n", joinCounts(causes))
	fmt.Printf("eaten_by_kind: %s\n", joinCounts(kinds))
	fmt.Printf("ai_pilot_totals: submits=%d searches=%d empty=%d coalesced=%.0f%%\n",
		totalSubmits, totalSearches, totalEmpty, 100*coalesceRatio(totalSubmits, totalSearches))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func coalesceRatio(submits, searches uint64) float64 {
	if submits == 0 || searches >= submits {
		return 0
	}
	return float64(submits-searches) / float64(submits)
}

// joinCounts renders a count map as "a=1 b=2" in key order.
func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
