// Package tmdb wraps The Movie Database HTTP API and normalizes its
// heterogeneous movie/TV payloads into the unified content records used by
// the rest of the bot.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/sourcegraph/conc"

	"vlopbot/internal/config"
	"vlopbot/internal/models"
)

// ProviderError reports a failed or unparseable upstream lookup. No retry is
// performed; callers surface it to the user.
type ProviderError struct {
	Endpoint string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("tmdb %s: %v", e.Endpoint, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Client is a thin TMDB API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the given API base URL and bearer token.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// Search runs the movie and TV search endpoints in parallel, merges both
// lists, ranks by popularity and truncates. Either sub-query failing fails
// the whole call.
func (c *Client) Search(ctx context.Context, query string) (models.ResultSet, error) {
	params := url.Values{
		"query":         {query},
		"include_adult": {"false"},
		"language":      {"en-US"},
	}

	var (
		movies, shows     []models.ContentItem
		movieErr, showErr error
		wg                conc.WaitGroup
	)
	wg.Go(func() {
		movies, movieErr = c.list(ctx, "/search/movie", params, models.KindMovie)
	})
	wg.Go(func() {
		shows, showErr = c.list(ctx, "/search/tv", params, models.KindTV)
	})
	wg.Wait()

	if movieErr != nil {
		return nil, movieErr
	}
	if showErr != nil {
		return nil, showErr
	}
	return rankAndTruncate(append(movies, shows...)), nil
}

// Trending returns today's trending titles in provider order, truncated.
func (c *Client) Trending(ctx context.Context) (models.ResultSet, error) {
	params := url.Values{"language": {"en-US"}}

	var payload listResponse
	if err := c.get(ctx, "/trending/all/day", params, &payload); err != nil {
		return nil, err
	}

	items := make([]models.ContentItem, 0, len(payload.Results))
	for _, raw := range payload.Results {
		kind := models.MediaKind(raw.MediaType)
		if kind != models.KindMovie && kind != models.KindTV {
			continue
		}
		items = append(items, raw.normalize(kind))
	}
	if len(items) > config.MaxResults {
		items = items[:config.MaxResults]
	}
	return items, nil
}

// Popular merges the fixed movie/TV popularity endpoints under the same
// rank-and-truncate contract as Search.
func (c *Client) Popular(ctx context.Context) (models.ResultSet, error) {
	params := url.Values{
		"language": {"en-US"},
		"page":     {"1"},
	}

	var (
		movies, shows     []models.ContentItem
		movieErr, showErr error
		wg                conc.WaitGroup
	)
	wg.Go(func() {
		movies, movieErr = c.list(ctx, "/movie/popular", params, models.KindMovie)
	})
	wg.Go(func() {
		shows, showErr = c.list(ctx, "/tv/popular", params, models.KindTV)
	})
	wg.Wait()

	if movieErr != nil {
		return nil, movieErr
	}
	if showErr != nil {
		return nil, showErr
	}
	return rankAndTruncate(append(movies, shows...)), nil
}

// Details fetches the full record for one title, mapping the provider's
// movie/TV field name differences into the unified shape.
func (c *Client) Details(ctx context.Context, id int64, kind models.MediaKind) (*models.ContentDetail, error) {
	endpoint := fmt.Sprintf("/movie/%d", id)
	if kind == models.KindTV {
		endpoint = fmt.Sprintf("/tv/%d", id)
	}
	params := url.Values{
		"append_to_response": {"credits,similar,videos"},
		"language":           {"en-US"},
	}

	var raw rawDetail
	if err := c.get(ctx, endpoint, params, &raw); err != nil {
		return nil, err
	}

	detail := &models.ContentDetail{
		ContentItem:  raw.rawItem.normalize(kind),
		BackdropPath: raw.BackdropPath,
		Status:       raw.Status,
		Tagline:      raw.Tagline,
		Runtime:      raw.Runtime,
	}
	for _, g := range raw.Genres {
		detail.Genres = append(detail.Genres, g.Name)
	}
	if kind == models.KindTV && len(raw.EpisodeRunTime) > 0 {
		detail.Runtime = raw.EpisodeRunTime[0]
	}
	return detail, nil
}

func (c *Client) list(ctx context.Context, endpoint string, params url.Values, kind models.MediaKind) ([]models.ContentItem, error) {
	var payload listResponse
	if err := c.get(ctx, endpoint, params, &payload); err != nil {
		return nil, err
	}
	items := make([]models.ContentItem, 0, len(payload.Results))
	for _, raw := range payload.Results {
		items = append(items, raw.normalize(kind))
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &ProviderError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Endpoint: endpoint, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// rankAndTruncate sorts by popularity descending (stable on ties, so
// provider order survives) and keeps the top results.
func rankAndTruncate(items []models.ContentItem) models.ResultSet {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Popularity > items[j].Popularity
	})
	if len(items) > config.MaxResults {
		items = items[:config.MaxResults]
	}
	return items
}
