// Package stream implements GET /stream: a polling Server-Sent-Events
// bridge over the Job Store, per spec.md §4.7.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/teal-fm/quizd/jobstore"
)

const pollInterval = time.Second

// Handler polls the Job Store for jobID and writes it out as an
// event-stream, bounded by maxLifetime. w must support http.Flusher.
type Handler struct {
	store       *jobstore.Store
	maxLifetime time.Duration
	logger      *log.Logger
}

// New builds a stream Handler.
func New(store *jobstore.Store, maxLifetime time.Duration) *Handler {
	return &Handler{
		store:       store,
		maxLifetime: maxLifetime,
		logger:      log.New(os.Stdout, "stream: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// ServeHTTP implements the poll loop of spec.md §4.7. It never emits done
// on deadline expiry (step 6); the client is expected to reconnect.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		http.Error(w, "missing jobId", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx, cancel := context.WithTimeout(r.Context(), h.maxLifetime)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastIndex := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done, err := h.tick(ctx, w, flusher, jobID, &lastIndex)
			if err != nil {
				writeEvent(w, flusher, "error", fmt.Sprintf(`{"message":%q}`, err.Error()))
				return
			}
			if done {
				return
			}
		}
	}
}

func (h *Handler) tick(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, jobID string, lastIndex *int) (bool, error) {
	results, err := h.store.ListResults(ctx, jobID, *lastIndex)
	if err != nil {
		return false, fmt.Errorf("reading results: %w", err)
	}
	for _, p := range results {
		body, err := json.Marshal(p)
		if err != nil {
			return false, fmt.Errorf("encoding result: %w", err)
		}
		writeEvent(w, flusher, "song", string(body))
		*lastIndex++
	}

	status, ok, err := h.store.GetStatus(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("reading status: %w", err)
	}
	if !ok {
		return false, nil
	}

	if status.Terminal() {
		// A result appended between the read above and the status read is
		// not yet emitted; done is only written once lastIndex has reached
		// the end of the results list, otherwise the next tick emits the
		// rest first.
		more, err := h.store.ListResults(ctx, jobID, *lastIndex)
		if err != nil {
			return false, fmt.Errorf("reading results: %w", err)
		}
		if len(more) > 0 {
			return false, nil
		}
		writeEvent(w, flusher, "done", string(status))
		return true, nil
	}
	return false, nil
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
