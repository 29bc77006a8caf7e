package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, e.g. a [BatchFailure]
}

// Operation phase enumeration
type Phase int

const (
	DeleteBatch Phase = iota
	BatchFailed
	PurgeComplete
)

func (p Phase) String() string {
	switch p {
	case DeleteBatch:
		return "delete_batch"
	case BatchFailed:
		return "batch_failed"
	case PurgeComplete:
		return "purge_complete"
	default:
		return ""
	}
}

func deletingBatchUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Deleting %d episodes...", step, total, size),
	}
}

func batchFailedUpdate(step, total int, failure BatchFailure) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to delete batch %d.", failure.Index),
		Data:    failure,
	}
}

func purgeCompleteUpdate(result *PurgeResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PurgeComplete,
		Step:    result.Batches,
		Total:   result.Batches,
		Message: fmt.Sprintf("Removed %d of %d episodes", result.Removed, result.Total),
		Data:    result,
	}
}
