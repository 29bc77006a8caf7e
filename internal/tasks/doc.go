// Package tasks deletes saved episodes in batches with progress reporting.
//
// # Purge
//
// [PurgeEngine.Purge] splits the ids with [Chunk] into slices of at most
// [services.MaxIDsPerRequest] and removes them one request at a time:
//   - chunks run sequentially, paced by a [rate.Limiter]
//   - a failed chunk is recorded as a [BatchFailure] and the loop continues
//   - nothing is retried or rolled back
//
// # Progress Reporting
//
// Progress is reported on an optional [ProgressUpdate] channel. Updates use
// select with default so a slow reader never stalls deletion.
package tasks
