// package models defines the data model for persisted sync history
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error        // Create inserts a new model into the database
	Get(id string) (*T, error)   // Get retrieves a model by its ID
	List(limit int) ([]T, error) // List retrieves the most recent models, newest first
}

// SyncRun is the persisted record of one reconciliation pass.
//
// History is observability only: it is never an input to the next pass.
type SyncRun struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SourceCount   int `json:"source_count"`
	MirrorCount   int `json:"mirror_count"`
	EventCount    int `json:"event_count"`
	EligibleCount int `json:"eligible_count"`
	LockedCount   int `json:"locked_count"`

	Added   int  `json:"added"`
	Removed int  `json:"removed"`
	Rebuilt bool `json:"rebuilt"`

	// Error holds the failure text for aborted passes, empty on success.
	Error string `json:"error,omitempty"`
}

func (r SyncRun) ID() string           { return r.RunID }
func (r SyncRun) CreatedAt() time.Time { return r.StartedAt }

func (r SyncRun) Validate() error {
	if r.RunID == "" {
		return fmt.Errorf("sync run requires an ID")
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("sync run requires a start time")
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return fmt.Errorf("sync run finished before it started")
	}
	return nil
}

// Succeeded reports whether the pass completed without error.
func (r SyncRun) Succeeded() bool { return r.Error == "" }

// Duration returns how long the pass took.
func (r SyncRun) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }
