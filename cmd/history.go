package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints the most recent sync runs.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	repo, release, err := r.openRunRepository()
	if err != nil {
		return err
	}
	defer release()

	runs, err := repo.List(int(limit))
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(runs, pretty)
	}

	if len(runs) == 0 {
		r.writePlain("No sync runs recorded yet. Run: spindle sync run\n")
		return nil
	}

	r.writePlain("Found %d sync runs:\n\n", len(runs))
	for _, run := range runs {
		r.writePlain("%s  %s  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			runOutcome(run),
			run.RunID,
		)
	}

	return nil
}

// HistoryShow prints one run in full, by ID or the latest.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	id := cmd.Args().First()

	repo, release, err := r.openRunRepository()
	if err != nil {
		return err
	}
	defer release()

	var run *models.SyncRun
	if id == "" {
		run, err = repo.Latest()
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("%w: no sync runs recorded yet", shared.ErrMissingArgument)
		}
	} else {
		run, err = repo.Get(id)
		if err != nil {
			return err
		}
	}

	if useJSON {
		return r.writeJSON(run, pretty)
	}

	r.writePlainHeader("Sync Run " + run.RunID)
	r.writePlain("Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	r.writePlain("Duration:  %s\n\n", run.Duration().Round(time.Millisecond))
	r.writePlain("Source:    %d tracks\n", run.SourceCount)
	r.writePlain("Mirror:    %d tracks\n", run.MirrorCount)
	r.writePlain("History:   %d play events\n", run.EventCount)
	r.writePlain("Eligible:  %d\n", run.EligibleCount)
	r.writePlain("Locked:    %d\n\n", run.LockedCount)
	r.writePlain("%s\n", runOutcome(*run))

	return nil
}

// runOutcome summarizes a run in one line.
func runOutcome(run models.SyncRun) string {
	switch {
	case !run.Succeeded():
		return "✗ " + run.Error
	case run.Rebuilt:
		return fmt.Sprintf("✓ rebuilt: %d removed, %d added", run.Removed, run.Added)
	default:
		return "✓ no change"
	}
}

// historyCommand handles sync history queries.
func historyCommand(r *Runner) *cli.Command {
	jsonFlags := []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output result as JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"},
	}

	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded sync runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent sync runs",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum runs to list", Value: 20},
				}, jsonFlags...),
				Action: r.HistoryList,
			},
			{
				Name:      "show",
				Usage:     "Show one run in full (latest when no ID given)",
				ArgsUsage: "[run-id]",
				Flags:     jsonFlags,
				Action:    r.HistoryShow,
			},
		},
	}
}
