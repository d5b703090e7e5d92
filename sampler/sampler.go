// Package sampler turns a playlist reference into a randomized candidate
// song set: fetch every track, shuffle, and split into a first song plus
// the remaining songs — the input shape spec.md's orchestrator expects.
package sampler

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/teal-fm/quizd/models"
	"github.com/teal-fm/quizd/service/streaming"
)

// BuildCandidateSet fetches the playlist's full track list, shuffles it,
// and splits it into a first song plus the rest. An empty playlist is a
// caller error, not a zero-value song.
func BuildCandidateSet(ctx context.Context, client *streaming.Client, playlistID string) (models.Song, []models.Song, error) {
	total, err := client.GetPlaylistTotal(ctx, playlistID)
	if err != nil {
		return models.Song{}, nil, fmt.Errorf("sampler: get playlist total: %w", err)
	}
	if total == 0 {
		return models.Song{}, nil, fmt.Errorf("sampler: playlist %q has no tracks", playlistID)
	}

	songs := make([]models.Song, 0, total)
	for offset := 0; offset < total; offset += streaming.MaxPageSize {
		limit := streaming.MaxPageSize
		if remaining := total - offset; remaining < limit {
			limit = remaining
		}
		tracks, err := client.GetPlaylistTracks(ctx, playlistID, offset, limit)
		if err != nil {
			return models.Song{}, nil, fmt.Errorf("sampler: get playlist tracks at offset %d: %w", offset, err)
		}
		for _, t := range tracks {
			songs = append(songs, t.ToSong())
		}
	}
	if len(songs) == 0 {
		return models.Song{}, nil, fmt.Errorf("sampler: playlist %q returned no tracks", playlistID)
	}

	rand.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })

	return songs[0], songs[1:], nil
}
