package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/rapidbatch/internal/config"
	"github.com/backmassage/rapidbatch/internal/display"
	"github.com/backmassage/rapidbatch/internal/logging"
	"github.com/backmassage/rapidbatch/internal/planner"
	"github.com/backmassage/rapidbatch/internal/rapidcompact"
	"github.com/backmassage/rapidbatch/internal/report"
)

// outputTailLines caps how much captured tool output is echoed to the
// console for a failed invocation. The error-log file keeps all of it.
const outputTailLines = 40

// job is one planned asset in discovery order.
type job struct {
	index int // 1-based
	plan  *planner.AssetPlan
}

// runner carries the shared state of one batch.
type runner struct {
	cfg    *config.Config
	log    *logging.Logger
	errLog *rapidcompact.ErrorLog

	mu    sync.Mutex
	stats RunStats
}

// Run is the top-level batch entry point. It optionally clears the output
// directory, discovers and plans every asset, processes the jobs with up
// to cfg.Jobs workers and returns aggregate stats. The error is non-nil
// only when the batch could not start (cleanup or discovery failed);
// per-asset failures are counted in RunStats.Failed.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	r := &runner{
		cfg:    cfg,
		log:    log,
		errLog: rapidcompact.NewErrorLog(cfg.ErrorDir),
	}

	if cfg.DeleteOutputFirst {
		if err := r.clearOutput(); err != nil {
			return r.stats, err
		}
	}

	files, err := Discover(cfg.InputDir, cfg.Extensions, cfg.OutputDir, cfg.ErrorDir)
	if err != nil {
		return r.stats, fmt.Errorf("discover %s: %w", cfg.InputDir, err)
	}
	r.stats.Total = len(files)
	logBatchHeader(cfg, log, len(files))

	jobs := r.plan(files)

	var g errgroup.Group
	g.SetLimit(cfg.Jobs)
	for _, j := range jobs {
		if ctx.Err() != nil {
			log.Warn("Interrupted, not starting remaining jobs")
			break
		}
		g.Go(func() error {
			r.process(ctx, j)
			return nil
		})
	}
	_ = g.Wait()

	logSummary(cfg, log, &r.stats)
	return r.stats, nil
}

// clearOutput removes the output directory once, before any job starts.
// It refuses when the input directory lives under the output directory.
func (r *runner) clearOutput() error {
	inAbs, errIn := filepath.Abs(r.cfg.InputDir)
	outAbs, errOut := filepath.Abs(r.cfg.OutputDir)
	if err := errors.Join(errIn, errOut); err != nil {
		return fmt.Errorf("delete output directory: %w", err)
	}
	if config.IsWithin(inAbs, outAbs) {
		return fmt.Errorf("refusing to delete output directory %s: it contains the input directory", r.cfg.OutputDir)
	}
	if r.cfg.DryRun {
		r.log.Warn("[DRY] Would delete output directory %s", r.cfg.OutputDir)
		return nil
	}
	r.log.Warn("Deleting output directory %s", r.cfg.OutputDir)
	if err := os.RemoveAll(r.cfg.OutputDir); err != nil {
		return fmt.Errorf("delete output directory: %w", err)
	}
	return nil
}

// plan assigns output prefixes sequentially in discovery order. Assets
// that lose a QA prefix collision are rejected here.
func (r *runner) plan(files []string) []job {
	pl := planner.New(r.cfg)
	jobs := make([]job, 0, len(files))
	for i, path := range files {
		plan, err := pl.Plan(path)
		switch {
		case errors.Is(err, planner.ErrPrefixTaken):
			r.log.Warn("Reject %s: %v", path, err)
			r.stats.Rejected++
			continue
		case err != nil:
			r.log.Error("Cannot plan %s: %v", path, err)
			r.stats.Failed++
			continue
		}
		jobs = append(jobs, job{index: i + 1, plan: plan})
	}
	return jobs
}

// process handles one asset: skip check, staging, tool runs, render
// relocation and summary. It never returns an error; outcomes are counted.
// A job whose context is already cancelled is not started or counted.
func (r *runner) process(ctx context.Context, j job) {
	plan := j.plan
	log := r.log.With("asset", plan.RelPath)

	if ctx.Err() != nil {
		log.Debug("Not started (interrupted): %s", plan.RelPath)
		return
	}

	r.mu.Lock()
	r.stats.Current++
	r.mu.Unlock()

	log.Info("[%d/%d] %s", j.index, r.stats.Total, plan.RelPath)

	if outputsComplete(plan) {
		log.Warn("Skip (done): %s", plan.RelPath)
		r.count(func(s *RunStats) { s.Skipped++ })
		return
	}

	invs := rapidcompact.Build(r.cfg, plan)

	if r.cfg.DryRun {
		for _, inv := range invs {
			log.Info("[DRY] %s", rapidcompact.CommandLine(inv.Args))
		}
		r.count(func(s *RunStats) { s.Processed++ })
		return
	}

	if err := prepareDirs(plan); err != nil {
		log.Error("Cannot create output directories: %v", err)
		r.count(func(s *RunStats) { s.Failed++ })
		return
	}
	if plan.Layout == planner.LayoutQA {
		if err := stageQA(plan.QA); err != nil {
			log.Error("Cannot stage QA input: %v", err)
			r.count(func(s *RunStats) { s.Failed++ })
			return
		}
	}

	start := time.Now()
	for _, inv := range invs {
		if inv.Pass == rapidcompact.PassFinalize {
			if _, err := os.Stat(plan.Intermediate); err != nil {
				log.Error("%v: %s", rapidcompact.ErrMissingIntermediate, plan.Intermediate)
				r.count(func(s *RunStats) { s.Failed++ })
				return
			}
		}

		log.Debug("Running: %s", rapidcompact.CommandLine(inv.Args))
		res := rapidcompact.Execute(ctx, r.cfg, inv)
		if res.Err != nil {
			r.fail(ctx, log, plan, inv, res)
			return
		}
		log.Debug("%s pass finished in %s", inv.Pass, res.Duration.Round(time.Millisecond))
	}

	if plan.RenderStageDir != "" {
		moved, err := rapidcompact.RelocateRender(plan.RenderStageDir, plan.OutputRender)
		switch {
		case err != nil:
			log.Warn("Render relocation failed: %v", err)
		case !moved:
			log.Debug("No render produced in %s", plan.RenderStageDir)
		}
	}

	r.finish(log, plan, time.Since(start))
}

// fail reports a failed invocation on the console and persists the captured
// output when the tool reported the error itself.
func (r *runner) fail(ctx context.Context, log *logging.Logger, plan *planner.AssetPlan, inv rapidcompact.Invocation, res rapidcompact.ExecResult) {
	r.count(func(s *RunStats) { s.Failed++ })

	if ctx.Err() != nil {
		log.Warn("Interrupted: %s", plan.RelPath)
		return
	}

	log.Error("RapidCompact failed (%s pass): %v", inv.Pass, res.Err)
	log.Error("Command: %s", rapidcompact.CommandLine(inv.Args))
	if tail := rapidcompact.TailLines(res.Output, outputTailLines); len(tail) > 0 {
		log.Error("Last RapidCompact output:")
		for _, l := range tail {
			log.Error("  %s", l)
		}
	}

	if errors.Is(res.Err, rapidcompact.ErrToolReported) {
		path, err := r.errLog.Write(plan.InputPath, res.Output)
		if err != nil {
			log.Error("Cannot write error log: %v", err)
			return
		}
		log.Warn("Error log: %s", path)
	}
}

// finish logs the before/after summary and accumulates byte totals.
func (r *runner) finish(log *logging.Logger, plan *planner.AssetPlan, elapsed time.Duration) {
	var inSize int64
	if fi, err := os.Stat(plan.InputPath); err == nil {
		inSize = fi.Size()
	}
	outSize := exportBytes(plan)

	r.count(func(s *RunStats) {
		s.Processed++
		s.TotalInputBytes += inSize
		s.TotalOutputBytes += outSize
	})

	before, errIn := report.ReadInfo(plan.InputStats)
	after, errOut := report.ReadInfo(plan.OutputStats)
	if errIn == nil && errOut == nil {
		if line := report.Compare(before, after); line != "" {
			log.Info("  %s", line)
		}
	} else {
		log.Debug("Stats unavailable: %v", errors.Join(errIn, errOut))
	}

	log.Success("Optimized in %s (%s -> %s, %d%% of input)",
		elapsed.Round(time.Second),
		display.FormatBytes(inSize),
		display.FormatBytes(outSize),
		display.Percent(outSize, inSize))
}

func (r *runner) count(f func(*RunStats)) {
	r.mu.Lock()
	f(&r.stats)
	r.mu.Unlock()
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, n int) {
	log.Info("Found %d assets in %s", n, cfg.InputDir)
	log.Info("Tool: %s", cfg.ToolExe)
	if cfg.ConfigFile != "" {
		log.Info("Config: %s", cfg.ConfigFile)
	}
	if cfg.Target != "" {
		log.Info("Target: %s", cfg.Target)
	} else {
		log.Info("Target: none (tool defaults)")
	}
	if cfg.QAMode {
		log.Info("Layout: QA (<name>-input/ and <name>-output/, GLB export)")
	} else {
		log.Info("Suffix: %s, formats: %s", cfg.Suffix, strings.Join(cfg.Formats, ", "))
	}
	if cfg.TwoPass {
		log.Info("Two-pass: normalize to GLB, then report and export")
	}
	if cfg.RenderConfig != "" {
		log.Info("Render config: %s", cfg.RenderConfig)
	}
	if cfg.Jobs > 1 {
		log.Info("Workers: %d", cfg.Jobs)
	}
	if cfg.Timeout > 0 {
		log.Info("Timeout per invocation: %s", cfg.Timeout)
	}
	log.Info("Error logs: %s", filepath.Clean(cfg.ErrorDir))
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d processed, %d skipped, %d failed, %d rejected",
		stats.Processed, stats.Skipped, stats.Failed, stats.Rejected)
	log.Info("Summary report:")
	log.Info("  Total assets: %d", stats.Total)

	if cfg.DryRun {
		log.Info("  Total space saved: n/a (dry run)")
		return
	}
	if stats.TotalInputBytes == 0 {
		return
	}

	saved := stats.SpaceSaved()
	if saved >= 0 {
		log.Success("  Total space saved: %s (input %s -> exports %s)",
			display.FormatBytes(saved),
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	} else {
		log.Warn("  Total space saved: %s (exports are larger than inputs)",
			display.FormatBytesWithSign(saved))
	}
}
