// Package tasks implements the fetch-and-aggregate half of a data refresh cycle.
//
// # Core Operations
//
// The [FetchEngine] retrieves the seven listening-history slices:
//
//  1. Top tracks for each of the three time windows
//  2. Top artists for each of the three time windows
//  3. Recently played tracks
//
// All seven requests are issued concurrently and paced by a shared rate
// limiter. A failed slice yields an empty collection tagged with its error;
// it never aborts the sibling requests or the cycle.
//
// [BuildInsights] is the pure aggregation step over a fetched [SliceSet]:
// genre collection, diversity counts, repeat-listen detection, cross-window
// consistency, mainstream score, and roasting flags. It tolerates any
// combination of empty slices and never fails.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, slice identity, and a
// human-readable message. Updates use select with default to prevent
// blocking.
package tasks
