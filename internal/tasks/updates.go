package tasks

import "fmt"

// ProgressUpdate represents a progress event during a fetch cycle.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase     // Operation phase
	Slice   SliceKind // Slice being fetched (valid for FetchSlice phases)
	Message string    // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchSlice Phase = iota
	SliceDone
	SliceFailed
	Aggregate
)

func (p Phase) String() string {
	switch p {
	case FetchSlice:
		return "fetch_slice"
	case SliceDone:
		return "slice_done"
	case SliceFailed:
		return "slice_failed"
	case Aggregate:
		return "aggregate"
	default:
		return ""
	}
}

func fetchSliceUpdate(kind SliceKind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSlice,
		Slice:   kind,
		Message: fmt.Sprintf("Fetching %s...", kind),
	}
}

func sliceDoneUpdate(kind SliceKind, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SliceDone,
		Slice:   kind,
		Message: fmt.Sprintf("Fetched %d %s items", count, kind),
	}
}

func sliceFailedUpdate(kind SliceKind, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SliceFailed,
		Slice:   kind,
		Message: fmt.Sprintf("Failed to fetch %s: %v", kind, err),
	}
}
