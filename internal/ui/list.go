package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spindle/internal/models"
)

var _ list.Item = runItem{}

// runItem wraps [models.SyncRun] to implement [list.Item].
type runItem struct {
	run models.SyncRun
}

func (i runItem) FilterValue() string { return i.run.RunID }

func (i runItem) Title() string {
	marker := "✓"
	if !i.run.Succeeded() {
		marker = "✗"
	} else if !i.run.Rebuilt {
		marker = "•"
	}
	return fmt.Sprintf("%s %s", marker, i.run.StartedAt.Local().Format("2006-01-02 15:04:05"))
}

func (i runItem) Description() string {
	if !i.run.Succeeded() {
		return i.run.Error
	}
	if !i.run.Rebuilt {
		return "no change"
	}
	return fmt.Sprintf("rebuilt • %d added • %d removed", i.run.Added, i.run.Removed)
}
