package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/repositories"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	library services.Library
	engine  tasks.SyncEngine
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Library services.Library
	Engine  tasks.SyncEngine
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Engine == nil && opts.Library != nil {
		opts.Engine = tasks.NewMirrorEngine(opts.Library, tasks.EngineOpts{
			Retention:          opts.Config.Sync.RetentionWindow(),
			Cooldown:           opts.Config.Sync.CooldownWindow(),
			MaxHistoryEvents:   opts.Config.Sync.MaxHistoryEvents,
			MaxHistoryRequests: opts.Config.Sync.MaxHistoryRequests,
		})
	}

	return &Runner{
		config:  opts.Config,
		library: opts.Library,
		engine:  opts.Engine,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger swaps the Runner's logger (used by the TUI to log to a file).
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openRunRepository opens the configured database and returns the run store
// with a release function.
func (r *Runner) openRunRepository() (*repositories.RunRepository, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewRunRepository(db), func() { db.Close() }, nil
}

// recordRun persists the outcome of a pass. History failures are logged,
// never surfaced: losing a history row must not fail a sync.
func (r *Runner) recordRun(repo *repositories.RunRepository, result *tasks.SyncResult, runErr error) {
	if repo == nil || result == nil {
		return
	}

	run := models.SyncRun{
		RunID:         result.RunID,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		SourceCount:   result.SourceCount,
		MirrorCount:   result.MirrorCount,
		EventCount:    result.EventCount,
		EligibleCount: result.EligibleCount,
		LockedCount:   result.LockedCount,
		Added:         result.Added,
		Removed:       result.Removed,
		Rebuilt:       result.Rebuilt,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record sync run", "run", result.RunID, "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
