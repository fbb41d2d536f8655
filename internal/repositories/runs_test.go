package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/spindle/internal/models"
	"github.com/desertthunder/spindle/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func sampleRun(id string, startedAt time.Time) models.SyncRun {
	return models.SyncRun{
		RunID:         id,
		StartedAt:     startedAt,
		FinishedAt:    startedAt.Add(3 * time.Second),
		SourceCount:   120,
		MirrorCount:   80,
		EventCount:    42,
		EligibleCount: 100,
		LockedCount:   7,
		Added:         93,
		Removed:       80,
		Rebuilt:       true,
	}
}

func TestRunRepository(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Create And Get", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		run := sampleRun(shared.GenerateID(), base)
		if err := repo.Create(run); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.Get(run.RunID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		if got.RunID != run.RunID {
			t.Errorf("RunID = %s, want %s", got.RunID, run.RunID)
		}
		if !got.StartedAt.Equal(run.StartedAt) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
		}
		if got.Added != 93 || got.Removed != 80 || !got.Rebuilt {
			t.Errorf("counts not persisted: %+v", got)
		}
		if !got.Succeeded() {
			t.Error("run without error text should report success")
		}
	})

	t.Run("Get Missing Run", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		if _, err := repo.Get("no-such-run"); err == nil {
			t.Error("expected error for missing run")
		}
	})

	t.Run("Create Rejects Invalid Run", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		if err := repo.Create(models.SyncRun{}); err == nil {
			t.Error("expected validation error for empty run")
		}
	})

	t.Run("Failed Run Round Trip", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		run := sampleRun(shared.GenerateID(), base)
		run.Rebuilt = false
		run.Added = 0
		run.Removed = 0
		run.Error = "failed to fetch source playlist: network down"

		if err := repo.Create(run); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := repo.Get(run.RunID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Succeeded() {
			t.Error("run with error text should not report success")
		}
		if got.Error != run.Error {
			t.Errorf("Error = %q, want %q", got.Error, run.Error)
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		ids := make([]string, 0, 3)
		for i := 0; i < 3; i++ {
			run := sampleRun(shared.GenerateID(), base.Add(time.Duration(i)*time.Hour))
			ids = append(ids, run.RunID)
			if err := repo.Create(run); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		runs, err := repo.List(10)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}

		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].RunID != ids[2] || runs[2].RunID != ids[0] {
			t.Error("runs not ordered newest first")
		}

		limited, err := repo.List(2)
		if err != nil {
			t.Fatalf("List(2) error = %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 runs, got %d", len(limited))
		}
	})

	t.Run("Latest", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		latest, err := repo.Latest()
		if err != nil {
			t.Fatalf("Latest() on empty store error = %v", err)
		}
		if latest != nil {
			t.Errorf("expected nil for empty store, got %+v", latest)
		}

		older := sampleRun(shared.GenerateID(), base)
		newer := sampleRun(shared.GenerateID(), base.Add(time.Hour))
		if err := repo.Create(older); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.Create(newer); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		latest, err = repo.Latest()
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if latest.RunID != newer.RunID {
			t.Errorf("Latest() = %s, want %s", latest.RunID, newer.RunID)
		}
	})
}
