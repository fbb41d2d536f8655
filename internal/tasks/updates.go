package tasks

import "fmt"

// ProgressUpdate represents a progress event during a reconciliation pass.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchMirror
	FetchHistory
	PlanDiff
	ClearMirror
	FillMirror
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchMirror:
		return "fetch_mirror"
	case FetchHistory:
		return "fetch_history"
	case PlanDiff:
		return "plan"
	case ClearMirror:
		return "clear_mirror"
	case FillMirror:
		return "fill_mirror"
	default:
		return ""
	}
}

func fetchSourceUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: "Fetching source playlist...",
	}
}

func fetchMirrorUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMirror,
		Step:    step,
		Total:   total,
		Message: "Fetching mirror playlist...",
	}
}

func fetchHistoryUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    step,
		Total:   total,
		Message: "Fetching recently played tracks...",
	}
}

func planUpdate(toAdd, toRemove int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlanDiff,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Computed diff: %d to add, %d to remove", toAdd, toRemove),
	}
}

func clearMirrorUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClearMirror,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Clearing mirror (%d tracks)...", count),
	}
}

func fillMirrorUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FillMirror,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Repopulating mirror (%d tracks)...", count),
	}
}
