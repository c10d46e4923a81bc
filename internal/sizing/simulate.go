package sizing

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs simulations for one center rule table. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	rules  Rules
	logger *zap.Logger
}

// NewEngine creates an engine for the given rules.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger, rules Rules) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{rules: rules, logger: logger}
}

// Rules returns the rule table of the engine.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Simulate runs the full pipeline: normalization, task hours, aggregation
// and allocation over the current headcount of the given positions.
func (e *Engine) Simulate(volumes []VolumeInput, params Parameters, standards []TaskStandard, positions []StaffPosition) SimulationResult {
	p := params.Sanitized()
	inputs := e.prepareVolumes(volumes, p)

	var diagnostics []string
	perTask := make([]TaskLoad, 0, len(standards))
	for _, task := range standards {
		daily, diag := e.dailyUnits(task, inputs, p)
		if diag != "" {
			diagnostics = append(diagnostics, diag)
			e.logger.Debug("skipping unmapped task",
				zap.String("op", "sizing.Simulate"),
				zap.String("center", e.rules.Center),
				zap.String("task", task.Name),
				zap.String("reason", diag),
			)
		}
		perTask = append(perTask, TaskLoad{
			Task:       task.Name,
			Family:     task.Family,
			Unit:       task.Unit,
			Phase:      task.Phase,
			DailyUnits: daily,
			Hours:      e.ComputeHours(task, daily, p),
		})
	}

	capacity := Aggregate(perTask, params)
	actual, positionDiags := CountHeadcount(positions)
	diagnostics = append(diagnostics, positionDiags...)

	allocation := Allocate(capacity.FTERounded, actual.MOI, actual.MOD, actual.APS)

	e.logger.Debug("simulation computed",
		zap.String("op", "sizing.Simulate"),
		zap.String("center", e.rules.Center),
		zap.Int("tasks", len(perTask)),
		zap.Float64("totalHours", capacity.TotalHours),
		zap.Float64("fteRaw", capacity.FTERaw),
		zap.Float64("fteRounded", capacity.FTERounded),
	)

	return SimulationResult{
		PerTask:                perTask,
		TotalHours:             capacity.TotalHours,
		NetCapacityHoursPerFTE: capacity.NetCapacityHoursPerFTE,
		FTERaw:                 capacity.FTERaw,
		FTERounded:             capacity.FTERounded,
		Actual:                 actual,
		Target:                 Headcount{MOD: capacity.FTERounded, MOI: actual.MOI},
		Final:                  allocation.Final,
		Gap:                    allocation.Gap,
		Diagnostics:            diagnostics,
	}
}

// CountHeadcount sums the current headcount of positions per category.
// Positions with an unknown category are ignored and reported.
func CountHeadcount(positions []StaffPosition) (Headcount, []string) {
	var (
		count       Headcount
		diagnostics []string
	)
	for _, pos := range positions {
		heads := mathutil.NonNegative(pos.CurrentHeadcount)
		switch Category(strings.ToUpper(strings.TrimSpace(string(pos.Category)))) {
		case CategoryMOD:
			count.MOD += heads
		case CategoryMOI:
			count.MOI += heads
		case CategoryAPS:
			count.APS += heads
		default:
			diagnostics = append(diagnostics,
				fmt.Sprintf("position %q: unknown category %q", pos.ID, pos.Category))
		}
	}
	return count, diagnostics
}

// Run is one independent simulation request.
type Run struct {
	Name      string
	Rules     Rules
	Volumes   []VolumeInput
	Params    Parameters
	Standards []TaskStandard
	Positions []StaffPosition
}

// RunResult pairs a run name with its result.
type RunResult struct {
	Name   string           `json:"name"`
	Center string           `json:"center"`
	Result SimulationResult `json:"result"`
}

// SimulateAll evaluates independent runs concurrently. Results keep the
// order of runs. Runs not yet started when ctx is canceled are skipped and
// the context error is returned.
func SimulateAll(ctx context.Context, logger *zap.Logger, runs []Run) ([]RunResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]RunResult, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range runs {
		i := i
		run := runs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			engine := NewEngine(logger.With(zap.String("run", run.Name)), run.Rules)
			results[i] = RunResult{
				Name:   run.Name,
				Center: run.Rules.Center,
				Result: engine.Simulate(run.Volumes, run.Params, run.Standards, run.Positions),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}
	return results, nil
}
