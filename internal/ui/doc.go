// Package ui implements the interactive history browser.
//
// A bubbletea application with two views: a [list.Model] of recent sync
// runs, and a detail view showing one run's counts and outcome. The TUI is
// read-only; reconciliation itself only runs through the sync commands.
package ui
