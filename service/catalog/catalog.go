// Package catalog is a rate-limited HTTPS client for the discography
// catalog the resolver consults for a song's original release year:
// search, master, and release-detail lookups.
package catalog

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const baseURL = "https://api.discography.example/v1"

// Limiter is process-wide: spec.md §5 requires every outbound catalog call,
// across every Client sharing a process, to be spaced ≥1s from the last.
var Limiter = rate.NewLimiter(rate.Every(time.Second), 1)

// Client talks to the discography catalog.
type Client struct {
	http   *resty.Client
	token  string
	logger *log.Logger
}

// Option configures a Client beyond its required token.
type Option func(*Client)

// WithBaseURL overrides the catalog API's base URL, for tests pointing a
// Client at an httptest server.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(url) }
}

// NewClient builds a catalog Client. token is the bearer token derived
// from CATALOG_API_TOKEN; an empty token is a configuration error the
// caller must catch at startup (spec.md §4.1).
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("catalog: missing API token")
	}
	c := &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		token:  token,
		logger: log.New(os.Stdout, "catalog: ", log.LstdFlags|log.Lmsgprefix),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("catalog: rate limiter: %w", err)
	}
	return nil
}

func (c *Client) request() *resty.Request {
	return c.http.R().SetHeader("Authorization", "Bearer "+c.token)
}

func checkStatus(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return &Error{Status: resp.StatusCode(), Body: string(resp.Body())}
}

// Search looks up candidate masters for a query, sorted per params.Sort.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]SearchResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var out searchResponse
	resp, err := c.request().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        params.Query,
			"type":     string(params.Type),
			"per_page": strconv.Itoa(params.PerPage),
			"sort":     params.Sort,
		}).
		SetResult(&out).
		Get("/database/search")
	if err != nil {
		return nil, fmt.Errorf("catalog: search request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GetMaster fetches a master release by id.
func (c *Client) GetMaster(ctx context.Context, id int64) (*Master, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var out Master
	resp, err := c.request().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/masters/%d", id))
	if err != nil {
		return nil, fmt.Errorf("catalog: get master request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRelease fetches one specific pressing by id.
func (c *Client) GetRelease(ctx context.Context, id int64) (*Release, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var out Release
	resp, err := c.request().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/releases/%d", id))
	if err != nil {
		return nil, fmt.Errorf("catalog: get release request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return &out, nil
}
