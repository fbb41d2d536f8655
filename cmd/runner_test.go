package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/tasks"
	tu "github.com/desertthunder/spindle/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			library := &tu.MockLibrary{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Library: library,
				Logger:  logger,
				Output:  output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.library != library {
				t.Error("expected library to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("builds an engine when a library is provided", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Library: &tu.MockLibrary{}})

			if runner.engine == nil {
				t.Error("expected engine to be constructed from the library")
			}
		})

		t.Run("no library means no engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.engine != nil {
				t.Error("expected nil engine without a library")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(output.String(), `{"key":"value"}`) {
				t.Errorf("expected compact JSON, got %s", output.String())
			}
		})

		t.Run("returns error for failing writer", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("returns error when newline write fails", func(t *testing.T) {
			limited := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limited})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error on newline")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("formats output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("count: %d\n", 7); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "count: 7\n" {
				t.Errorf("output = %q", output.String())
			}
		})

		t.Run("returns error for failing writer", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("hello"); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("prepareSync", func(t *testing.T) {
		t.Run("fails without a library", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			if err := runner.prepareSync(context.Background()); !errors.Is(err, shared.ErrFatalConfig) {
				t.Errorf("expected ErrFatalConfig, got %v", err)
			}
		})

		t.Run("fails on invalid config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Library: &tu.MockLibrary{},
				Output:  &bytes.Buffer{},
			})

			if err := runner.prepareSync(context.Background()); err == nil {
				t.Error("expected validation error for default config")
			}
		})
	})

	t.Run("recordRun", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Database.Path = ":memory:"
		// A single pooled connection keeps the in-memory database alive
		config.Database.MaxOpenConns = 1
		config.Database.MaxIdleConns = 1
		runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})

		repo, release, err := runner.openRunRepository()
		if err != nil {
			t.Fatalf("openRunRepository() error = %v", err)
		}
		defer release()

		t.Run("persists a successful pass", func(t *testing.T) {
			result := &tasks.SyncResult{
				RunID:      shared.GenerateID(),
				StartedAt:  time.Now().Add(-time.Second),
				FinishedAt: time.Now(),
				Added:      3,
				Removed:    1,
				Rebuilt:    true,
			}

			runner.recordRun(repo, result, nil)

			got, err := repo.Get(result.RunID)
			if err != nil {
				t.Fatalf("run not persisted: %v", err)
			}
			if !got.Rebuilt || got.Added != 3 {
				t.Errorf("persisted run = %+v", got)
			}
		})

		t.Run("persists the failure text", func(t *testing.T) {
			result := &tasks.SyncResult{
				RunID:      shared.GenerateID(),
				StartedAt:  time.Now().Add(-time.Second),
				FinishedAt: time.Now(),
			}

			runner.recordRun(repo, result, errors.New("failed to clear mirror"))

			got, err := repo.Get(result.RunID)
			if err != nil {
				t.Fatalf("run not persisted: %v", err)
			}
			if got.Succeeded() {
				t.Error("failed pass recorded as success")
			}
		})

		t.Run("nil repo and nil result are safe", func(t *testing.T) {
			runner.recordRun(nil, &tasks.SyncResult{}, nil)
			runner.recordRun(repo, nil, nil)
		})
	})
}
