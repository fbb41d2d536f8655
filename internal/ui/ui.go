package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spindle/internal/models"
)

// RunStore is the slice of the repository the TUI needs.
type RunStore interface {
	List(limit int) ([]models.SyncRun, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunListView ViewState = iota
	RunDetailView
)

const historyPageSize = 50

// Model represents the TUI application state.
type Model struct {
	view     ViewState
	store    RunStore
	width    int
	height   int
	runList  list.Model
	selected *models.SyncRun
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates the history browser model backed by the given store.
func NewModel(store RunStore) Model {
	delegate := list.NewDefaultDelegate()
	runList := list.New([]list.Item{}, delegate, 0, 0)
	runList.Title = "Sync History"
	runList.SetShowHelp(false)

	return Model{
		view:    RunListView,
		store:   store,
		runList: runList,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the run history.
func (m Model) Init() tea.Cmd {
	return m.loadRuns
}

// loadRuns is a [tea.Cmd] that fetches recent runs from the store.
func (m Model) loadRuns() tea.Msg {
	runs, err := m.store.List(historyPageSize)
	return runsLoadedMsg(runs, err)
}

// Update handles messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runList.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case Msg:
		if msg.kind == MsgRunsLoaded {
			data := msg.data.(struct {
				runs []models.SyncRun
				err  error
			})
			if data.err != nil {
				m.err = data.err
				return m, nil
			}
			m.err = nil
			items := make([]list.Item, 0, len(data.runs))
			for _, run := range data.runs {
				items = append(items, runItem{run: run})
			}
			return m, m.runList.SetItems(items)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.refresh):
			return m, m.loadRuns

		case key.Matches(msg, m.keys.enter):
			if m.view == RunListView {
				if item, ok := m.runList.SelectedItem().(runItem); ok {
					run := item.run
					m.selected = &run
					m.view = RunDetailView
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.back):
			if m.view == RunDetailView {
				m.view = RunListView
				m.selected = nil
			}
			return m, nil
		}
	}

	if m.view == RunListView {
		var cmd tea.Cmd
		m.runList, cmd = m.runList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current view.
func (m Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" +
			styles.help.Render("r to retry • q to quit")
	}

	switch m.view {
	case RunDetailView:
		return m.detailView()
	default:
		return m.runList.View() + "\n" + m.help.View(m.keys)
	}
}

// detailView renders one run's counts and outcome.
func (m Model) detailView() string {
	if m.selected == nil {
		return ""
	}
	run := m.selected

	var b strings.Builder
	b.WriteString(styles.title.Render("Sync Run "+run.RunID) + "\n\n")

	b.WriteString(fmt.Sprintf("Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Duration:  %s\n\n", run.Duration().Round(10*time.Millisecond)))

	b.WriteString(fmt.Sprintf("Source:    %d tracks\n", run.SourceCount))
	b.WriteString(fmt.Sprintf("Mirror:    %d tracks\n", run.MirrorCount))
	b.WriteString(fmt.Sprintf("History:   %d play events\n", run.EventCount))
	b.WriteString(fmt.Sprintf("Eligible:  %d\n", run.EligibleCount))
	b.WriteString(fmt.Sprintf("Locked:    %d\n\n", run.LockedCount))

	switch {
	case !run.Succeeded():
		b.WriteString(styles.err.Render("✗ "+run.Error) + "\n")
	case run.Rebuilt:
		b.WriteString(styles.ok.Render(fmt.Sprintf("✓ rebuilt: %d removed, %d added", run.Removed, run.Added)) + "\n")
	default:
		b.WriteString(styles.ok.Render("✓ no change") + "\n")
	}

	b.WriteString("\n" + styles.help.Render("esc to go back • q to quit"))
	return b.String()
}
