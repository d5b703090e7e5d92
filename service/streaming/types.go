package streaming

import "github.com/teal-fm/quizd/models"

// Track is one entry of a playlist's track list as returned by the
// streaming service.
type Track struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		ReleaseDate string `json:"releaseDate"`
	} `json:"album"`
	External struct {
		URL string `json:"url"`
	} `json:"external"`
}

// ToSong converts a Track to the song shape the resolver and sampler work
// with. A track with no listed artist yields an empty Artist, left for the
// resolver's normalize/search steps to handle like any other miss.
func (t Track) ToSong() models.Song {
	var artist string
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	return models.Song{
		Artist:             artist,
		Title:              t.Name,
		SpotifyURL:         t.External.URL,
		CurrentReleaseDate: t.Album.ReleaseDate,
	}
}

type playlistResponse struct {
	Total int `json:"total"`
}

type tracksResponse struct {
	Items []Track `json:"items"`
}
