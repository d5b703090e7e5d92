// Package streaming is a client-credentials client for the streaming
// service's playlist metadata and track listing, used both as the
// resolver's fallback year source and by the sampler to build the
// candidate song set.
package streaming

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"
)

const baseURL = "https://api.streaming.example/v1"

// Client fetches playlist metadata and tracks using a cached
// client-credentials bearer token.
type Client struct {
	http   *resty.Client
	logger *log.Logger
}

// NewClient builds a streaming Client. The returned *http.Client from
// clientcredentials.Config already caches the bearer token and refreshes
// it once it is absent or within its expiry margin, which is exactly the
// caching contract spec.md §4.2 asks for.
func NewClient(clientID, clientSecret, tokenURL string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("streaming: missing client credentials")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cc.Client(context.Background())

	return &Client{
		http:   resty.NewWithClient(httpClient).SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		logger: log.New(os.Stdout, "streaming: ", log.LstdFlags|log.Lmsgprefix),
	}, nil
}

// NewTestClient builds a Client pointed directly at baseURL, bypassing the
// OAuth client-credentials dance, for use by other packages' tests (e.g.
// sampler) that need a streaming.Client backed by an httptest server.
func NewTestClient(baseURL string) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(baseURL),
		logger: log.New(os.Stdout, "streaming: ", log.LstdFlags|log.Lmsgprefix),
	}
}

// GetPlaylistTotal returns the number of tracks in the playlist.
func (c *Client) GetPlaylistTotal(ctx context.Context, playlistID string) (int, error) {
	var out playlistResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("fields", "total").
		SetResult(&out).
		Get(fmt.Sprintf("/playlists/%s", playlistID))
	if err != nil {
		return 0, fmt.Errorf("streaming: get playlist total: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("streaming: get playlist total: status %d: %s", resp.StatusCode(), resp.Body())
	}
	return out.Total, nil
}

// MaxPageSize is the streaming API's maximum track page size.
const MaxPageSize = 50

// GetPlaylistTracks fetches one page of a playlist's tracks, in order.
// Callers should request MaxPageSize to minimize round-trips per spec.md
// §4.2.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string, offset, limit int) ([]Track, error) {
	var out tracksResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset": fmt.Sprintf("%d", offset),
			"limit":  fmt.Sprintf("%d", limit),
		}).
		SetResult(&out).
		Get(fmt.Sprintf("/playlists/%s/tracks", playlistID))
	if err != nil {
		return nil, fmt.Errorf("streaming: get playlist tracks: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("streaming: get playlist tracks: status %d: %s", resp.StatusCode(), resp.Body())
	}
	return out.Items, nil
}
