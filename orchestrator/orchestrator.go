// Package orchestrator implements the /process and /playlist request
// flows: resolve the first song inline, create a job, and hand the rest
// off to the queue for the worker to pick up.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/teal-fm/quizd/jobstore"
	"github.com/teal-fm/quizd/models"
	"github.com/teal-fm/quizd/queue"
	"github.com/teal-fm/quizd/sampler"
	"github.com/teal-fm/quizd/service/resolver"
	"github.com/teal-fm/quizd/service/streaming"
)

// Orchestrator wires the resolver, job store, and queue together to
// implement spec.md §4.5.
type Orchestrator struct {
	resolver  *resolver.Resolver
	store     *jobstore.Store
	queue     *queue.Client
	streaming *streaming.Client
	logger    *log.Logger
}

// New builds an Orchestrator. streamingClient may be nil if the /playlist
// convenience endpoint is not needed.
func New(r *resolver.Resolver, store *jobstore.Store, q *queue.Client, streamingClient *streaming.Client) *Orchestrator {
	return &Orchestrator{
		resolver:  r,
		store:     store,
		queue:     q,
		streaming: streamingClient,
		logger:    log.New(os.Stdout, "orchestrator: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// Result is the response shape of both /process and /playlist.
type Result struct {
	ProcessedSong models.ProcessedSong `json:"processedSong"`
	JobID         string               `json:"jobId"`
}

// Process implements spec.md §4.5 steps 1-5: resolve firstSong inline,
// create the job, and enqueue remainingSongs. A queue publish failure is
// degraded gracefully (status=publish_failed, still 200 with firstSong);
// only a Job Store failure is fatal to the caller.
func (o *Orchestrator) Process(ctx context.Context, firstSong models.Song, remainingSongs []models.Song) (Result, error) {
	processed := o.resolver.Resolve(ctx, firstSong)

	jobID := uuid.NewString()
	if err := o.store.InitJob(ctx, jobID, processed.ReleaseYear); err != nil {
		return Result{}, fmt.Errorf("orchestrator: init job: %w", err)
	}

	if len(remainingSongs) == 0 {
		if err := o.store.SetStatus(ctx, jobID, models.JobComplete); err != nil {
			return Result{}, fmt.Errorf("orchestrator: set status complete: %w", err)
		}
		return Result{ProcessedSong: processed, JobID: jobID}, nil
	}

	if err := o.queue.Publish(ctx, jobID, remainingSongs); err != nil {
		o.logger.Printf("queue publish failed for job %s: %v", jobID, err)
		if err := o.store.SetStatus(ctx, jobID, models.JobPublishFailed); err != nil {
			o.logger.Printf("failed to record publish_failed status for job %s: %v", jobID, err)
		}
		return Result{ProcessedSong: processed, JobID: jobID}, nil
	}

	return Result{ProcessedSong: processed, JobID: jobID}, nil
}

// ProcessPlaylist implements the /playlist convenience endpoint from
// SPEC_FULL.md §4.8: build a candidate set from a playlist reference, then
// run the same flow as Process.
func (o *Orchestrator) ProcessPlaylist(ctx context.Context, playlistID string) (Result, error) {
	if o.streaming == nil {
		return Result{}, fmt.Errorf("orchestrator: no streaming client configured for /playlist")
	}
	firstSong, remainingSongs, err := sampler.BuildCandidateSet(ctx, o.streaming, playlistID)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: build candidate set: %w", err)
	}
	return o.Process(ctx, firstSong, remainingSongs)
}
