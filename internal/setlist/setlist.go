// Package setlist implements the setlist.fm source for the playlist pipeline.
//
// Only the first page of search results is read. setlist.fm orders results newest first, so the
// first record that carries songs is the artist's most recent usable setlist.
package setlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.setlist.fm/rest/1.0"
	searchPath     = "/search/setlists"
)

// Fetcher is the pipeline's view of a setlist source.
type Fetcher interface {
	FetchLatest(ctx context.Context, artist string) (*models.Setlist, error)
}

// Source queries setlist.fm. It holds no per-request state and is safe for concurrent use.
type Source struct {
	client *resty.Client
	logger *log.Logger
}

// Options configures a [Source].
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewSource creates a setlist.fm client. The API key is required.
func NewSource(opts Options) (*Source, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: setlist.fm api_key", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = shared.NewHTTPClient(shared.DefaultTimeout)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	client := resty.NewWithClient(opts.HTTPClient).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("x-api-key", opts.APIKey).
		SetHeader("Accept", "application/json")

	return &Source{client: client, logger: opts.Logger}, nil
}

// FetchLatest returns the newest setlist with at least one named song.
//
// Returns [shared.ErrSetlistNotFound] when the artist has no setlists or none with songs on the first page,
// and [shared.ErrSourceRequest] for transport, status or decoding failures.
func (s *Source) FetchLatest(ctx context.Context, artist string) (*models.Setlist, error) {
	query := shared.CollapseSpaces(artist)
	if query == "" {
		return nil, fmt.Errorf("%w: artist name is empty", shared.ErrInvalidInput)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"artistName": query, "p": "1"}).
		Get(searchPath)
	if err != nil {
		if shared.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %w: %v", shared.ErrSourceRequest, shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceRequest, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		s.logger.Debug("setlist.fm returned no results", "artist", query)
		return nil, fmt.Errorf("%w: %s", shared.ErrSetlistNotFound, query)
	case resp.StatusCode() < 200 || resp.StatusCode() > 299:
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrSourceRequest, resp.StatusCode(), errorMessage(resp.Body()))
	}

	var page searchResponse
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrSourceRequest, err)
	}

	for _, rec := range page.Setlist {
		songs := rec.songNames()
		if len(songs) == 0 {
			continue
		}
		s.logger.Debug("selected setlist", "artist", query, "id", rec.ID, "date", rec.EventDate, "songs", len(songs))
		return rec.toModel(query, songs), nil
	}

	return nil, fmt.Errorf("%w: %s", shared.ErrSetlistNotFound, query)
}

// errorMessage extracts setlist.fm's error message, falling back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return shared.Truncate(strings.TrimSpace(string(body)), 200)
}
