// Package engine provides the tick-based simulation loop.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/talgya/assetworld/internal/entropy"
	"github.com/talgya/assetworld/internal/resolve"
	"github.com/talgya/assetworld/internal/world"
)

// ConflictSolver resolves a batch of contested cells.
type ConflictSolver interface {
	Solve(conflicts []world.Conflict, rng entropy.Source) ([]world.Conflict, resolve.Summary, error)
}

// StopReason says why Run returned.
type StopReason string

const (
	StopExtinct   StopReason = "extinct"   // Population reached zero
	StopMaxTicks  StopReason = "max_ticks" // Tick limit reached
	StopCancelled StopReason = "cancelled" // Context done
	StopRequested StopReason = "stopped"   // Stop was called
)

// Engine drives a world forward: resolve conflicts, report, advance time.
type Engine struct {
	World    *world.World
	Solver   ConflictSolver
	RNG      entropy.Source // Feeds conflict resolution; the world keeps its own
	MaxTicks uint64         // 0 runs until extinction or cancellation

	ReportEvery uint64 // Log a report every N ticks; 0 disables
	Verify      bool   // Check world bookkeeping after every resolution

	// OnTick receives every report. Returning an error aborts the run.
	OnTick func(Report) error

	running atomic.Bool
}

// Result is the outcome of a finished run.
type Result struct {
	Last    Report
	Reason  StopReason
	Totals  resolve.Summary
	Elapsed time.Duration
}

// NewEngine creates an engine over w.
func NewEngine(w *world.World, solver ConflictSolver, rng entropy.Source) *Engine {
	return &Engine{
		World:       w,
		Solver:      solver,
		RNG:         rng,
		ReportEvery: 10,
	}
}

// Run loops until the population dies out, MaxTicks is reached, ctx is done
// or Stop is called. Each iteration resolves the current conflicts, reports,
// and only then moves time, so the final report describes the state the run
// ended in.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	e.running.Store(true)
	defer e.running.Store(false)

	start := time.Now()
	res := Result{}
	slog.Info("simulation engine started", "tick", e.World.Tick(), "max_ticks", e.MaxTicks)

	for {
		if ctx.Err() != nil {
			res.Reason = StopCancelled
			break
		}
		if !e.running.Load() {
			res.Reason = StopRequested
			break
		}

		rep, err := e.step()
		if err != nil {
			return res, fmt.Errorf("tick %d: %w", e.World.Tick(), err)
		}
		res.Last = rep
		res.Totals.Add(rep.Summary)

		if e.OnTick != nil {
			if err := e.OnTick(rep); err != nil {
				return res, fmt.Errorf("tick %d report: %w", rep.Tick, err)
			}
		}
		if e.ReportEvery > 0 && rep.Tick%e.ReportEvery == 0 {
			rep.Log()
		}

		if rep.Indicators.TotalPopulation == 0 {
			res.Reason = StopExtinct
			slog.Info("population extinct", "tick", rep.Tick)
			break
		}
		if e.MaxTicks > 0 && e.World.Tick() >= e.MaxTicks {
			res.Reason = StopMaxTicks
			break
		}
		e.World.MoveTime()
	}

	res.Elapsed = time.Since(start)
	slog.Info("simulation engine stopped",
		"tick", e.World.Tick(),
		"reason", string(res.Reason),
		"elapsed", res.Elapsed.Round(time.Millisecond),
	)
	return res, nil
}

// Stop asks a running loop to return after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// step resolves the current conflicts and writes them back.
func (e *Engine) step() (Report, error) {
	w := e.World
	resolved, sum, err := e.Solver.Solve(w.Conflicts(), e.RNG)
	if err != nil {
		return Report{}, fmt.Errorf("resolve conflicts: %w", err)
	}
	if err := w.SolveConflicts(resolved); err != nil {
		return Report{}, fmt.Errorf("apply resolutions: %w", err)
	}
	if e.Verify {
		if err := w.Verify(); err != nil {
			return Report{}, err
		}
	}
	return Report{
		Tick:       w.Tick(),
		Indicators: w.Indicators(),
		Summary:    sum,
	}, nil
}
