// Package models defines persistent model contracts and the [SyncRun]
// record.
//
// Reconciliation inputs are ephemeral per-run snapshots and are never
// persisted; the only durable local state is the run history, kept so the
// history command and the TUI can answer "what did the last pass do".
package models
