package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spindle/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgRunsLoaded MsgKind = iota
)

// runsLoadedMsg is the constructor for [MsgRunsLoaded]
func runsLoadedMsg(runs []models.SyncRun, err error) Msg {
	return Msg{
		kind: MsgRunsLoaded,
		data: struct {
			runs []models.SyncRun
			err  error
		}{runs, err},
	}
}
