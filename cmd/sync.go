package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/spindle/internal/repositories"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun performs one reconciliation pass and records the outcome.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.prepareSync(ctx); err != nil {
		return err
	}

	repo, release, err := r.openRunRepository()
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
	} else {
		defer release()
	}

	result, runErr := r.reconcileOnce(ctx, !useJSON)
	r.recordRun(repo, result, runErr)

	if runErr != nil {
		return runErr
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")
	r.printSummary(result)
	return nil
}

// SyncPlan computes the diff without writing anything.
func (r *Runner) SyncPlan(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.prepareSync(ctx); err != nil {
		return err
	}

	plan, err := r.engine.Plan(ctx, nil)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(plan, pretty)
	}

	r.writePlainHeader("Sync Plan (dry run)")
	r.writePlain("Source: %d tracks, %d eligible, %d locked by cooldown\n",
		plan.SourceCount, plan.EligibleCount, plan.LockedCount)
	r.writePlain("Mirror: %d tracks\n\n", plan.MirrorCount)

	if plan.NoChange() {
		r.writePlain("✓ Mirror is up to date, nothing to do\n")
		return nil
	}

	r.writePlain("Would rebuild the mirror with %d tracks:\n", len(plan.Desired))
	r.writePlain("  %d to add\n", len(plan.ToAdd))
	for _, uri := range plan.ToAdd {
		r.writePlain("    + %s\n", uri)
	}
	r.writePlain("  %d to remove\n", len(plan.ToRemove))
	for _, uri := range plan.ToRemove {
		r.writePlain("    - %s\n", uri)
	}

	return nil
}

// SyncDaemon runs reconciliation immediately and then on a fixed interval
// until interrupted.
//
// Passes never overlap: the single loop is the serialization point, and each
// pass is bounded by a context timeout so a wedged call cannot outlive its
// slot.
func (r *Runner) SyncDaemon(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepareSync(ctx); err != nil {
		return err
	}

	repo, release, err := r.openRunRepository()
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
	} else {
		defer release()
	}

	interval := r.config.Sync.Interval()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("daemon started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.daemonPass(ctx, repo, interval)

		select {
		case <-ctx.Done():
			r.logger.Info("daemon stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// daemonPass runs one bounded pass, logging instead of failing: the daemon
// keeps ticking through transient errors and the next pass self-heals.
func (r *Runner) daemonPass(ctx context.Context, repo *repositories.RunRepository, budget time.Duration) {
	if ctx.Err() != nil {
		return
	}

	passCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	result, err := r.reconcileOnce(passCtx, false)
	r.recordRun(repo, result, err)

	if err != nil {
		r.logger.Error("sync pass failed", "run", result.RunID, "error", err)
		return
	}

	if result.Rebuilt {
		r.logger.Info("mirror rebuilt",
			"run", result.RunID,
			"added", result.Added,
			"removed", result.Removed,
			"eligible", result.EligibleCount,
			"locked", result.LockedCount,
		)
	} else {
		r.logger.Info("mirror unchanged", "run", result.RunID)
	}
}

// prepareSync validates configuration and authenticates the library.
func (r *Runner) prepareSync(ctx context.Context) error {
	if r.library == nil || r.engine == nil {
		return fmt.Errorf("%w: spotify credentials not configured", shared.ErrFatalConfig)
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	if err := r.library.Authenticate(ctx, r.config.Credentials.Spotify.Map()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return nil
}

// reconcileOnce drives one engine pass, rendering progress when asked.
func (r *Runner) reconcileOnce(ctx context.Context, renderProgress bool) (*tasks.SyncResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			if renderProgress {
				r.writePlain("→ %s\n", update.Message)
			} else {
				r.logger.Debug(update.Message, "phase", update.Phase.String())
			}
		}
	}()

	result, err := r.engine.Reconcile(ctx, progressCh)
	close(progressCh)

	if result != nil && result.EventCount < r.config.Sync.MaxHistoryEvents {
		r.logger.Debug("partial play history",
			"collected", result.EventCount,
			"requested", r.config.Sync.MaxHistoryEvents,
		)
	}

	return result, err
}

// printSummary writes the human-readable result of a pass.
func (r *Runner) printSummary(result *tasks.SyncResult) {
	r.writePlain("Source: %d tracks (%d eligible, %d locked)\n",
		result.SourceCount, result.EligibleCount, result.LockedCount)
	r.writePlain("Mirror: %d tracks before sync\n", result.MirrorCount)

	if !result.Rebuilt {
		r.writePlain("\n✓ Mirror already up to date\n")
		return
	}

	r.writePlain("\n✓ Rebuilt mirror: removed %d, added %d\n", result.Removed, result.Added)
	r.writePlain("Duration: %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
}

// syncCommand handles reconciliation operations.
func syncCommand(r *Runner) *cli.Command {
	jsonFlags := []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output result as JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile the mirror playlist",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run one reconciliation pass",
				Flags:  jsonFlags,
				Action: r.SyncRun,
			},
			{
				Name:   "plan",
				Usage:  "Show what a pass would change without writing",
				Flags:  jsonFlags,
				Action: r.SyncPlan,
			},
			{
				Name:   "daemon",
				Usage:  "Run continuously on the configured interval",
				Action: r.SyncDaemon,
			},
		},
	}
}
