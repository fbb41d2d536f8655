// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"

	"github.com/desertthunder/spindle/internal/services"
)

// MockLibrary is a configurable test double for [services.Library].
//
// Writes are recorded so tests can assert batching and ordering.
type MockLibrary struct {
	Source []services.PlaylistEntry
	Mirror []services.MirrorEntry
	Events []services.PlayEvent

	AuthenticateErr error
	SourceErr       error
	MirrorErr       error
	EventsErr       error
	AppendErr       error
	RemoveErr       error

	Appended [][]string
	Removed  [][]string
}

func (m *MockLibrary) Name() string { return "mock" }

func (m *MockLibrary) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthenticateErr
}

func (m *MockLibrary) FetchSource(ctx context.Context) ([]services.PlaylistEntry, error) {
	if m.SourceErr != nil {
		return nil, m.SourceErr
	}
	return m.Source, nil
}

func (m *MockLibrary) FetchMirror(ctx context.Context) ([]services.MirrorEntry, error) {
	if m.MirrorErr != nil {
		return nil, m.MirrorErr
	}
	return m.Mirror, nil
}

func (m *MockLibrary) FetchRecentlyPlayed(ctx context.Context, maxEvents, maxRequests int) ([]services.PlayEvent, error) {
	if m.EventsErr != nil {
		return nil, m.EventsErr
	}
	return m.Events, nil
}

func (m *MockLibrary) AppendToMirror(ctx context.Context, uris []string) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Appended = append(m.Appended, uris)
	return nil
}

func (m *MockLibrary) RemoveFromMirror(ctx context.Context, uris []string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.Removed = append(m.Removed, uris)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
