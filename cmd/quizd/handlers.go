package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teal-fm/quizd/apierr"
	"github.com/teal-fm/quizd/models"
	"github.com/teal-fm/quizd/worker"
)

// jsonResponse writes data as a JSON body with statusCode.
func jsonResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError picks a status code from err's apierr.Kind, per spec.md §7's
// taxonomy, defaulting to 500 for anything unclassified.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierr.Error
	status := http.StatusInternalServerError
	if errors.As(err, &apiErr) && apiErr.Kind == apierr.KindBadRequest {
		status = http.StatusBadRequest
	}
	jsonResponse(w, status, map[string]string{"error": err.Error()})
}

type processRequest struct {
	FirstSong      models.Song   `json:"firstSong"`
	RemainingSongs []models.Song `json:"remainingSongs"`
}

// handleProcess implements POST /process (spec.md §6).
func (app *application) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.KindBadRequest, err))
		return
	}

	result, err := app.orchestrator.Process(r.Context(), req.FirstSong, req.RemainingSongs)
	if err != nil {
		app.logger.Printf("/process failed: %v", err)
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

type playlistRequest struct {
	PlaylistID string `json:"playlistId"`
}

// handlePlaylist implements POST /playlist (SPEC_FULL.md §4.8).
func (app *application) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaylistID == "" {
		writeError(w, apierr.New(apierr.KindBadRequest, errors.New("missing playlistId")))
		return
	}

	result, err := app.orchestrator.ProcessPlaylist(r.Context(), req.PlaylistID)
	if err != nil {
		app.logger.Printf("/playlist failed: %v", err)
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// handleWorker implements POST /worker (spec.md §6): the queue provider's
// signed callback that drives the background half of a job.
func (app *application) handleWorker(w http.ResponseWriter, r *http.Request) {
	if err := app.queue.VerifySignature(r.Header.Get("Upstash-Signature")); err != nil {
		jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	var payload worker.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.JobID == "" {
		writeError(w, apierr.New(apierr.KindBadRequest, errors.New("malformed worker payload")))
		return
	}

	if err := app.worker.Run(r.Context(), payload); err != nil {
		app.logger.Printf("/worker failed for job %s: %v", payload.JobID, err)
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// handleStream implements GET /stream?jobId=… (spec.md §4.7).
func (app *application) handleStream(w http.ResponseWriter, r *http.Request) {
	app.stream.ServeHTTP(w, r)
}
