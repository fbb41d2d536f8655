// package tasks implements the mirror playlist reconciliation engine.
//
// The core abstraction is SyncEngine, which computes the diff between the
// desired and actual mirror state and applies it through the Library.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
)

// SyncResult summarizes one reconciliation pass.
type SyncResult struct {
	RunID      string    // Unique identifier for this pass
	StartedAt  time.Time // When the pass began
	FinishedAt time.Time // When the pass completed or failed

	SourceCount   int // Source entries fetched
	MirrorCount   int // Mirror entries fetched
	EventCount    int // Distinct play events fetched
	EligibleCount int // Source entries within the retention window
	LockedCount   int // Tracks locked by the cooldown window

	Added   int  // Tracks written to the mirror
	Removed int  // Tracks removed from the mirror
	Rebuilt bool // Whether a full rebuild was performed
}

// SyncPlan describes the writes a reconciliation pass would perform,
// without performing them.
type SyncPlan struct {
	Desired  []services.PlaylistEntry // Final mirror contents, most recently added first
	ToAdd    []string                 // Desired tracks missing from the mirror
	ToRemove []string                 // Mirror tracks absent from desired

	SourceCount   int
	MirrorCount   int
	EventCount    int
	EligibleCount int
	LockedCount   int

	mirror []services.MirrorEntry
}

// NoChange reports whether the mirror already matches the desired state.
func (p *SyncPlan) NoChange() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// SyncEngine defines operations for reconciling the mirror playlist.
type SyncEngine interface {
	// Reconcile performs one full pass: fetch snapshots, compute the diff,
	// and rebuild the mirror when anything differs.
	Reconcile(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error)

	// Plan computes the diff without issuing any writes.
	Plan(ctx context.Context, progress chan<- ProgressUpdate) (*SyncPlan, error)
}

// EngineOpts contains tuning for a MirrorEngine.
type EngineOpts struct {
	Retention          time.Duration    // Maximum age since added-at for eligibility
	Cooldown           time.Duration    // Minimum time since last play
	MaxHistoryEvents   int              // Distinct play events to request
	MaxHistoryRequests int              // Page budget for the history fetch
	Now                func() time.Time // Clock, defaults to time.Now
}

// MirrorEngine implements SyncEngine against a single services.Library.
//
// One invocation at a time: callers must not overlap Reconcile calls, since
// a rebuild in flight would race another on the remote playlist.
type MirrorEngine struct {
	library services.Library
	opts    EngineOpts
}

// NewMirrorEngine creates a MirrorEngine with the provided library and options.
func NewMirrorEngine(library services.Library, opts EngineOpts) *MirrorEngine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxHistoryEvents <= 0 {
		opts.MaxHistoryEvents = 100
	}
	if opts.MaxHistoryRequests <= 0 {
		opts.MaxHistoryRequests = 4
	}
	return &MirrorEngine{library: library, opts: opts}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls a pass.
func (e *MirrorEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Plan fetches all three snapshots and computes the diff. The read phase is
// all-or-nothing: any fetch failure aborts before a write could happen.
func (e *MirrorEngine) Plan(ctx context.Context, progress chan<- ProgressUpdate) (*SyncPlan, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrNotAuthenticated)
	}

	e.sendProgress(progress, fetchSourceUpdate(1, 3))
	source, err := e.library.FetchSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source playlist: %w", err)
	}

	e.sendProgress(progress, fetchMirrorUpdate(2, 3))
	mirror, err := e.library.FetchMirror(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mirror playlist: %w", err)
	}

	e.sendProgress(progress, fetchHistoryUpdate(3, 3))
	events, err := e.library.FetchRecentlyPlayed(ctx, e.opts.MaxHistoryEvents, e.opts.MaxHistoryRequests)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch play history: %w", err)
	}

	now := e.opts.Now()

	eligible := eligibleEntries(source, now, e.opts.Retention)
	locked := lockedURIs(events, now, e.opts.Cooldown)
	desired := desiredEntries(eligible, locked)
	sortByAddedAtDesc(desired)

	toAdd, toRemove := diffSets(desired, mirror)

	plan := &SyncPlan{
		Desired:       desired,
		ToAdd:         toAdd,
		ToRemove:      toRemove,
		SourceCount:   len(source),
		MirrorCount:   len(mirror),
		EventCount:    len(events),
		EligibleCount: len(eligible),
		LockedCount:   len(locked),
		mirror:        mirror,
	}

	e.sendProgress(progress, planUpdate(len(toAdd), len(toRemove)))

	return plan, nil
}

// Reconcile performs one full pass.
//
// When the plan shows any difference the whole mirror is rebuilt: every
// current entry is removed, then every desired entry is appended in order.
// Positional patching against the API's shifting-index semantics is
// unreliable under concurrent drift; clearing first also makes duplicate
// entries impossible on the append path. A write failure aborts the rest of
// the sequence without rollback; the next scheduled pass converges.
func (e *MirrorEngine) Reconcile(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	result := &SyncResult{
		RunID:     shared.GenerateID(),
		StartedAt: e.opts.Now(),
	}

	plan, err := e.Plan(ctx, progress)
	if err != nil {
		result.FinishedAt = e.opts.Now()
		return result, err
	}

	result.SourceCount = plan.SourceCount
	result.MirrorCount = plan.MirrorCount
	result.EventCount = plan.EventCount
	result.EligibleCount = plan.EligibleCount
	result.LockedCount = plan.LockedCount

	if plan.NoChange() {
		result.FinishedAt = e.opts.Now()
		return result, nil
	}

	result.Rebuilt = true

	removeAll := make([]string, 0, len(plan.mirror))
	seen := make(map[string]struct{}, len(plan.mirror))
	for _, entry := range plan.mirror {
		if _, dup := seen[entry.URI]; dup {
			continue
		}
		seen[entry.URI] = struct{}{}
		removeAll = append(removeAll, entry.URI)
	}

	e.sendProgress(progress, clearMirrorUpdate(len(removeAll)))
	if err := e.library.RemoveFromMirror(ctx, removeAll); err != nil {
		result.FinishedAt = e.opts.Now()
		return result, fmt.Errorf("failed to clear mirror: %w", err)
	}
	result.Removed = len(removeAll)

	uris := make([]string, 0, len(plan.Desired))
	for _, entry := range plan.Desired {
		uris = append(uris, entry.URI)
	}

	e.sendProgress(progress, fillMirrorUpdate(len(uris)))
	if err := e.library.AppendToMirror(ctx, uris); err != nil {
		result.FinishedAt = e.opts.Now()
		return result, fmt.Errorf("failed to repopulate mirror: %w", err)
	}
	result.Added = len(uris)

	result.FinishedAt = e.opts.Now()
	return result, nil
}

// eligibleEntries filters source entries to those added within the retention
// window. The boundary is inclusive: an entry exactly retention old stays.
func eligibleEntries(source []services.PlaylistEntry, now time.Time, retention time.Duration) []services.PlaylistEntry {
	var eligible []services.PlaylistEntry
	for _, entry := range source {
		if now.Sub(entry.AddedAt) <= retention {
			eligible = append(eligible, entry)
		}
	}
	return eligible
}

// lockedURIs returns the set of track URIs played within the cooldown
// window. The boundary is inclusive: a play exactly cooldown old still locks.
func lockedURIs(events []services.PlayEvent, now time.Time, cooldown time.Duration) map[string]struct{} {
	locked := make(map[string]struct{})
	for _, event := range events {
		if now.Sub(event.PlayedAt) <= cooldown {
			locked[event.URI] = struct{}{}
		}
	}
	return locked
}

// desiredEntries removes locked tracks from the eligible set, deduplicating
// by URI while preserving source order.
func desiredEntries(eligible []services.PlaylistEntry, locked map[string]struct{}) []services.PlaylistEntry {
	var desired []services.PlaylistEntry
	seen := make(map[string]struct{}, len(eligible))
	for _, entry := range eligible {
		if _, isLocked := locked[entry.URI]; isLocked {
			continue
		}
		if _, dup := seen[entry.URI]; dup {
			continue
		}
		seen[entry.URI] = struct{}{}
		desired = append(desired, entry)
	}
	return desired
}

// sortByAddedAtDesc orders entries most recently added first. Ties keep the
// order the source fetch returned them in.
func sortByAddedAtDesc(entries []services.PlaylistEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AddedAt.After(entries[j].AddedAt)
	})
}

// diffSets computes the URIs to add (desired but absent) and remove (present
// but undesired), preserving input ordering in both slices.
func diffSets(desired []services.PlaylistEntry, mirror []services.MirrorEntry) (toAdd, toRemove []string) {
	desiredSet := make(map[string]struct{}, len(desired))
	for _, entry := range desired {
		desiredSet[entry.URI] = struct{}{}
	}

	currentSet := make(map[string]struct{}, len(mirror))
	for _, entry := range mirror {
		currentSet[entry.URI] = struct{}{}
	}

	for _, entry := range desired {
		if _, present := currentSet[entry.URI]; !present {
			toAdd = append(toAdd, entry.URI)
		}
	}

	removed := make(map[string]struct{}, len(mirror))
	for _, entry := range mirror {
		if _, wanted := desiredSet[entry.URI]; wanted {
			continue
		}
		if _, dup := removed[entry.URI]; dup {
			continue
		}
		removed[entry.URI] = struct{}{}
		toRemove = append(toRemove, entry.URI)
	}

	return toAdd, toRemove
}
