package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive sync history browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	repo, release, err := r.openRunRepository()
	if err != nil {
		return err
	}
	defer release()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/spindle-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(repo)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand launches the history browser.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse sync history interactively",
		Action: r.TUI,
	}
}
