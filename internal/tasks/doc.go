// Package tasks reconciles the mirror playlist against the source playlist
// with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.Reconcile] : One full pass
//     - Fetches source, mirror, and play history snapshots
//     - Filters source entries to the retention window (inclusive boundary)
//     - Locks tracks played within the cooldown window (inclusive boundary)
//     - Rebuilds the mirror whenever anything differs: clear, then append the
//     desired set ordered by descending added-at
//     - Returns counts for everything fetched, planned, and written
//
//  2. [SyncEngine.Plan] : The same computation with no writes, for dry runs
//
// # Rebuild over patch
//
// Sparse positional edits against the remote API's shifting-index semantics
// are unreliable when the playlist drifts between read and write. A full
// clear-then-repopulate costs more calls but lands the ordering invariant
// deterministically, and the clear makes duplicate appends impossible.
// Collection sizes are bounded and the cadence is coarse, so the extra calls
// are cheap.
//
// # Failure semantics
//
// The read phase is all-or-nothing: any fetch error aborts before a write is
// attempted. A write error aborts the remaining writes without rollback; the
// pass is idempotent and convergent, so the next scheduled run repairs any
// partial state.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates: sends use
// select with default so a slow consumer can never stall a pass.
package tasks
