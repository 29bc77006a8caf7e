// package tasks implements batched deletion of saved episodes
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/epx/internal/services"
	"github.com/desertthunder/epx/internal/shared"
	"golang.org/x/time/rate"
)

// BatchFailure identifies a chunk the server refused. Index is 1-based.
type BatchFailure struct {
	Index int
	IDs   []string
}

// PurgeResult summarizes a [PurgeEngine.Purge] run.
type PurgeResult struct {
	Total   int            // ids requested
	Batches int            // chunks attempted
	Removed int            // ids in chunks that succeeded
	Failed  []BatchFailure // chunks that failed, in order
}

// Succeeded reports whether every attempted chunk was removed.
func (r *PurgeResult) Succeeded() bool {
	return len(r.Failed) == 0
}

// FailedIDs returns the ids of every failed chunk.
func (r *PurgeResult) FailedIDs() []string {
	var ids []string
	for _, f := range r.Failed {
		ids = append(ids, f.IDs...)
	}
	return ids
}

// PurgeOptions configures a [PurgeEngine].
type PurgeOptions struct {
	BatchSize int     // ids per request, capped at [services.MaxIDsPerRequest]
	Rate      float64 // requests per second; 0 disables pacing
	Logger    *log.Logger
}

// PurgeEngine deletes episodes in sequential, rate-limited chunks.
type PurgeEngine struct {
	remover   services.EpisodeRemover
	batchSize int
	limiter   *rate.Limiter
	logger    *log.Logger
}

// NewPurgeEngine creates a [PurgeEngine] around remover.
func NewPurgeEngine(remover services.EpisodeRemover, opts PurgeOptions) *PurgeEngine {
	if opts.BatchSize <= 0 || opts.BatchSize > services.MaxIDsPerRequest {
		opts.BatchSize = services.MaxIDsPerRequest
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}

	return &PurgeEngine{
		remover:   remover,
		batchSize: opts.BatchSize,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    opts.Logger,
	}
}

// BatchSize returns the effective chunk size.
func (e *PurgeEngine) BatchSize() int {
	return e.batchSize
}

// Plan returns the chunks [PurgeEngine.Purge] would send, without sending them.
func (e *PurgeEngine) Plan(ids []string) [][]string {
	return Chunk(ids, e.batchSize)
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PurgeEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Purge removes ids chunk by chunk. A failed chunk is recorded and the loop
// moves on; nothing is retried or rolled back. Cancellation stops before the
// next chunk and returns the partial result along with the context error.
func (e *PurgeEngine) Purge(ctx context.Context, accessToken string, ids []string, progress chan<- ProgressUpdate) (*PurgeResult, error) {
	if e.remover == nil {
		return nil, fmt.Errorf("%w: episode client not initialized", shared.ErrServiceUnavailable)
	}

	chunks := e.Plan(ids)
	result := &PurgeResult{Total: len(ids)}

	for i, chunk := range chunks {
		if err := e.limiter.Wait(ctx); err != nil {
			return result, err
		}

		index := i + 1
		result.Batches++
		e.sendProgress(progress, deletingBatchUpdate(index, len(chunks), len(chunk)))

		if e.remover.RemoveEpisodes(ctx, accessToken, chunk) {
			result.Removed += len(chunk)
			e.logger.Debug("deleted batch", "batch", index, "of", len(chunks), "size", len(chunk))
			continue
		}

		failure := BatchFailure{Index: index, IDs: chunk}
		result.Failed = append(result.Failed, failure)
		e.logger.Warn("batch delete failed", "batch", index, "size", len(chunk))
		e.sendProgress(progress, batchFailedUpdate(index, len(chunks), failure))
	}

	e.sendProgress(progress, purgeCompleteUpdate(result))
	return result, nil
}

// Chunk splits ids into consecutive slices of at most size elements, preserving order.
func Chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = services.MaxIDsPerRequest
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
