package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marquee/internal/services"
)

const imageBaseURL = "https://image.tmdb.org/t/p/w500"

// MovieDetails is the subset of the TMDB /movie/{id} payload used to fill
// gaps in catalog rows.
type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	IMDbID      string  `json:"imdb_id"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
}

// Client provides access to the TMDB movie details endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetMovieDetails fetches a movie by TMDB id. A 404 maps to services.ErrNotFound.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "movie details", "movie id must be positive", nil)
	}
	endpoint, err := url.Parse(c.baseURL + "/movie/" + strconv.FormatInt(movieID, 10))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "tmdb", "movie details", fmt.Sprintf("latency=%v", latency), err)
		}
		return nil, services.Wrap(services.ErrUpstreamUnavailable, "tmdb", "movie details", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "tmdb", "movie details", fmt.Sprintf("movie %d", movieID), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, services.Wrap(services.ErrUpstreamUnavailable, "tmdb", "movie details", fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload MovieDetails
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrParseFailure, "tmdb", "movie details", "decode response", err)
	}
	return &payload, nil
}

// PosterURL expands a TMDB poster path into an absolute image URL. Values
// that are already absolute are returned unchanged.
func PosterURL(posterPath string) string {
	posterPath = strings.TrimSpace(posterPath)
	switch {
	case posterPath == "":
		return ""
	case strings.HasPrefix(posterPath, "http://"), strings.HasPrefix(posterPath, "https://"):
		return posterPath
	case strings.HasPrefix(posterPath, "/"):
		return imageBaseURL + posterPath
	default:
		return imageBaseURL + "/" + posterPath
	}
}
