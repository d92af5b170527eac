package setlist

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/shared"
	tu "github.com/desertthunder/setlistx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const radioheadPage = `{
  "type": "setlists", "itemsPerPage": 20, "page": 1, "total": 3,
  "setlist": [
    {
      "id": "empty", "eventDate": "20-07-2024",
      "artist": {"name": "Radiohead"},
      "sets": {"set": []}
    },
    {
      "id": "63de4613", "eventDate": "14-07-2024", "url": "https://www.setlist.fm/setlist/radiohead/2024/x.html",
      "artist": {"mbid": "a74b1b7f", "name": "Radiohead", "disambiguation": ""},
      "venue": {"name": "Madison Square Garden", "city": {"name": "New York", "country": {"code": "US", "name": "United States"}}},
      "tour": {"name": "World Tour"},
      "sets": {"set": [
        {"song": [{"name": "Creep"}, {"name": ""}]},
        {"encore": 1, "song": [{"name": "Karma Police"}]}
      ]}
    },
    {
      "id": "older", "eventDate": "01-07-2024",
      "sets": {"set": [{"song": [{"name": "Airbag"}]}]}
    }
  ]
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src, err := NewSource(Options{
		APIKey:     "key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Logger:     log.New(io.Discard),
	})
	require.NoError(t, err)
	return src
}

func TestNewSource(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewSource(Options{})
		assert.ErrorIs(t, err, shared.ErrMissingCredentials)
	})

	t.Run("defaults", func(t *testing.T) {
		src, err := NewSource(Options{APIKey: "key"})
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, src.client.BaseURL)
	})
}

func TestFetchLatest(t *testing.T) {
	ctx := context.Background()

	t.Run("picks first setlist with songs", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, searchPath, r.URL.Path)
			assert.Equal(t, "key", r.Header.Get("x-api-key"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "Radiohead", r.URL.Query().Get("artistName"))
			assert.Equal(t, "1", r.URL.Query().Get("p"))
			io.WriteString(w, radioheadPage)
		})

		sl, err := src.FetchLatest(ctx, "  Radiohead ")
		require.NoError(t, err)
		assert.Equal(t, "Radiohead", sl.ArtistQuery)
		assert.Equal(t, "Radiohead", sl.ArtistName)
		assert.Equal(t, "14-07-2024", sl.EventDate)
		assert.Equal(t, "Madison Square Garden", sl.VenueName)
		assert.Equal(t, "New York", sl.City)
		assert.Equal(t, "United States", sl.Country)
		assert.Equal(t, "World Tour", sl.Tour)
		assert.Equal(t, []string{"Creep", "Karma Police"}, sl.Songs)
	})

	t.Run("404 is not found", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"code":404,"status":"Not Found","message":"not found"}`)
		})

		_, err := src.FetchLatest(ctx, "Obscure Band")
		assert.ErrorIs(t, err, shared.ErrSetlistNotFound)
	})

	t.Run("no setlist with songs is not found", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"setlist":[{"id":"a","sets":{"set":[{"song":[]}]}},{"id":"b"}]}`)
		})

		_, err := src.FetchLatest(ctx, "Quiet Band")
		assert.ErrorIs(t, err, shared.ErrSetlistNotFound)
	})

	t.Run("server error is a source error", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"code":500,"status":"Internal Server Error","message":"upstream down"}`)
		})

		_, err := src.FetchLatest(ctx, "Radiohead")
		assert.ErrorIs(t, err, shared.ErrSourceRequest)
		assert.ErrorContains(t, err, "upstream down")
		assert.NotErrorIs(t, err, shared.ErrSetlistNotFound)
	})

	t.Run("malformed body is a source error", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"setlist": [`)
		})

		_, err := src.FetchLatest(ctx, "Radiohead")
		assert.ErrorIs(t, err, shared.ErrSourceRequest)
	})

	t.Run("timeout is a source error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		t.Cleanup(srv.Close)

		client := srv.Client()
		client.Timeout = 50 * time.Millisecond
		src, err := NewSource(Options{APIKey: "key", BaseURL: srv.URL, HTTPClient: client, Logger: log.New(io.Discard)})
		require.NoError(t, err)

		_, err = src.FetchLatest(ctx, "Radiohead")
		assert.ErrorIs(t, err, shared.ErrSourceRequest)
		assert.ErrorIs(t, err, shared.ErrTimeout)
	})

	t.Run("transport failure is a source error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		src, err := NewSource(Options{APIKey: "key", HTTPClient: client, Logger: log.New(io.Discard)})
		require.NoError(t, err)

		_, err = src.FetchLatest(ctx, "Radiohead")
		assert.ErrorIs(t, err, shared.ErrSourceRequest)
		assert.ErrorContains(t, err, "connection refused")
		assert.NotErrorIs(t, err, shared.ErrTimeout)
	})

	t.Run("unreadable body is a source error", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: &tu.FCloser{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		src, err := NewSource(Options{APIKey: "key", HTTPClient: client, Logger: log.New(io.Discard)})
		require.NoError(t, err)

		_, err = src.FetchLatest(ctx, "Radiohead")
		assert.ErrorIs(t, err, shared.ErrSourceRequest)
	})

	t.Run("blank artist", func(t *testing.T) {
		src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})

		_, err := src.FetchLatest(ctx, "   ")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestSongNames(t *testing.T) {
	var rec setlistRecord
	assert.Nil(t, rec.songNames())

	rec.Sets = &struct {
		Set []setGroup `json:"set"`
	}{Set: []setGroup{
		{Song: []song{{Name: "One"}, {Name: "  "}}},
		{Encore: 1, Song: []song{{Name: "Two"}, {Name: "Three"}}},
	}}
	assert.Equal(t, []string{"One", "Two", "Three"}, rec.songNames())
}
