// Package models holds the data types shared across the quiz pipeline.
package models

// Song is the identity of a track before year resolution.
type Song struct {
	Artist             string `json:"artist"`
	Title              string `json:"title"`
	SpotifyURL         string `json:"spotifyUrl"`
	CurrentReleaseDate string `json:"currentReleaseDate"`
}

// Source identifies which upstream supplied a ProcessedSong's release year.
type Source string

const (
	SourceCatalog   Source = "catalog"
	SourceStreaming Source = "streaming"
)

// NotAvailable is the sentinel value for a year/month/day that couldn't be resolved.
const NotAvailable = "N/A"

// ProcessedSong is a Song augmented with a resolved release date.
type ProcessedSong struct {
	Artist             string `json:"artist"`
	Title              string `json:"title"`
	SpotifyURL         string `json:"spotifyUrl"`
	CurrentReleaseDate string `json:"currentReleaseDate"`

	ReleaseYear  string `json:"releaseYear"`
	ReleaseMonth string `json:"releaseMonth"`
	ReleaseDay   string `json:"releaseDay"`
	Source       Source `json:"source"`
	SourceURL    string `json:"sourceUrl,omitempty"`
	Error        string `json:"error,omitempty"`
}

// JobStatus is the lifecycle state of a background resolution job.
type JobStatus string

const (
	JobQueued        JobStatus = "queued"
	JobProcessing    JobStatus = "processing"
	JobComplete      JobStatus = "complete"
	JobPublishFailed JobStatus = "publish_failed"
	JobWorkerFailed  JobStatus = "worker_failed"
)

// Terminal reports whether the status ends the job's lifecycle.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobComplete, JobPublishFailed, JobWorkerFailed:
		return true
	default:
		return false
	}
}
