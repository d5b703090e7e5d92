// Package worker consumes a queued job's remaining songs: resolve each in
// turn and append it to the job's results, tolerating per-song failures
// without losing the rest of the batch.
package worker

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/teal-fm/quizd/jobstore"
	"github.com/teal-fm/quizd/models"
	"github.com/teal-fm/quizd/service/resolver"
)

// Worker runs the background half of a job: everything after the
// Orchestrator has already resolved and returned the first song.
type Worker struct {
	resolver *resolver.Resolver
	store    *jobstore.Store
	logger   *log.Logger
}

// New builds a Worker.
func New(r *resolver.Resolver, store *jobstore.Store) *Worker {
	return &Worker{
		resolver: r,
		store:    store,
		logger:   log.New(os.Stdout, "worker: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// Payload is the /worker request body, per spec.md §6.
type Payload struct {
	JobID          string        `json:"jobId"`
	SongsToProcess []models.Song `json:"songsToProcess"`
}

// Run implements spec.md §4.6: set status=processing, resolve and append
// each song sequentially (duplicates by year are silently discarded by the
// Job Store), then set status=complete. A per-song resolver failure never
// happens today (Resolve never errors) but is caught defensively so one
// bad song cannot abort the whole batch; only a Job Store failure aborts
// the run and reports worker_failed.
func (w *Worker) Run(ctx context.Context, payload Payload) error {
	fail := func(err error) error {
		if failErr := w.store.SetStatus(ctx, payload.JobID, models.JobWorkerFailed); failErr != nil {
			w.logger.Printf("job %s: failed to record worker_failed status: %v", payload.JobID, failErr)
		}
		return err
	}

	if err := w.store.SetStatus(ctx, payload.JobID, models.JobProcessing); err != nil {
		return fail(fmt.Errorf("worker: set status processing: %w", err))
	}

	for _, song := range payload.SongsToProcess {
		processed := w.resolveSafely(ctx, song)
		if _, err := w.store.AppendResult(ctx, payload.JobID, processed); err != nil {
			return fail(fmt.Errorf("worker: append result for job %s: %w", payload.JobID, err))
		}
	}

	if err := w.store.SetStatus(ctx, payload.JobID, models.JobComplete); err != nil {
		return fail(fmt.Errorf("worker: set status complete: %w", err))
	}
	return nil
}

// resolveSafely recovers from a panic inside the resolver so a single
// malformed song degrades to a synthetic error entry instead of aborting
// the batch.
func (w *Worker) resolveSafely(ctx context.Context, song models.Song) (processed models.ProcessedSong) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Printf("recovered from panic resolving %q by %q: %v", song.Title, song.Artist, r)
			processed = models.ProcessedSong{
				Artist:      song.Artist,
				Title:       song.Title,
				SpotifyURL:  song.SpotifyURL,
				ReleaseYear: models.NotAvailable,
				Source:      models.SourceStreaming,
				Error:       fmt.Sprintf("resolve panic: %v", r),
			}
		}
	}()
	return w.resolver.Resolve(ctx, song)
}
