package services

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeezerService(t *testing.T) {
	ctx := context.Background()
	cred := models.NewCredential("tok")

	token := func(t *testing.T, r *http.Request) {
		t.Helper()
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
	}

	t.Run("Identify", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
			token(t, r)
			io.WriteString(w, `{"id":4242,"name":"listener"}`)
		})

		id, err := NewDeezerService(testOptions(t, mux)).Identify(ctx, cred)
		require.NoError(t, err)
		assert.Equal(t, "4242", id)
	})

	t.Run("OAuthException envelope is auth required", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"error":{"type":"OAuthException","message":"Invalid OAuth access token.","code":300}}`)
		})

		_, err := NewDeezerService(testOptions(t, mux)).Identify(ctx, cred)
		assert.ErrorIs(t, err, shared.ErrAuthRequired)
	})

	t.Run("other envelope is an API error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"error":{"type":"Exception","message":"Quota limit exceeded","code":4}}`)
		})

		_, found, err := NewDeezerService(testOptions(t, mux)).SearchTrack(ctx, "Creep", "Radiohead", cred)
		assert.False(t, found)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.NotErrorIs(t, err, shared.ErrAuthRequired)
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("returns first hit", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
				token(t, r)
				assert.Equal(t, `track:"Creep" artist:"Radiohead"`, r.URL.Query().Get("q"))
				assert.Equal(t, "1", r.URL.Query().Get("limit"))
				io.WriteString(w, `{"data":[{"id":3135556,"title":"Creep"}],"total":1}`)
			})

			id, found, err := NewDeezerService(testOptions(t, mux)).SearchTrack(ctx, "Creep", "Radiohead", cred)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "3135556", id)
		})

		t.Run("empty data", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"data":[],"total":0}`)
			})

			_, found, err := NewDeezerService(testOptions(t, mux)).SearchTrack(ctx, "x", "y", cred)
			require.NoError(t, err)
			assert.False(t, found)
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /user/4242/playlists", func(w http.ResponseWriter, r *http.Request) {
			token(t, r)
			assert.Equal(t, "Radiohead Setlist - 14-07-2024", r.URL.Query().Get("title"))
			io.WriteString(w, `{"id":908622995}`)
		})

		spec := PlaylistSpec{Name: "Radiohead Setlist - 14-07-2024"}
		created, err := NewDeezerService(testOptions(t, mux)).CreatePlaylist(ctx, "4242", spec, cred)
		require.NoError(t, err)
		assert.Equal(t, "908622995", created.ID)
		assert.Equal(t, "https://www.deezer.com/playlist/908622995", created.URL)
	})

	t.Run("AddItems", func(t *testing.T) {
		t.Run("joins ids in order", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /playlist/99/tracks", func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "3,1,2", r.URL.Query().Get("songs"))
				io.WriteString(w, `true`)
			})

			added, err := NewDeezerService(testOptions(t, mux)).AddItems(ctx, "99", []string{"3", "1", "2"}, cred)
			require.NoError(t, err)
			assert.Equal(t, 3, added)
		})

		t.Run("empty set makes no call", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			})

			added, err := NewDeezerService(testOptions(t, mux)).AddItems(ctx, "99", nil, cred)
			require.NoError(t, err)
			assert.Zero(t, added)
		})

		t.Run("false response", func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("POST /playlist/99/tracks", func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `false`)
			})

			added, err := NewDeezerService(testOptions(t, mux)).AddItems(ctx, "99", []string{"1"}, cred)
			assert.ErrorIs(t, err, shared.ErrAPIRequest)
			assert.Zero(t, added)
		})
	})

	t.Run("DeletePlaylist", func(t *testing.T) {
		var hit bool
		mux := http.NewServeMux()
		mux.HandleFunc("DELETE /playlist/99", func(w http.ResponseWriter, r *http.Request) {
			hit = true
			io.WriteString(w, `true`)
		})

		require.NoError(t, NewDeezerService(testOptions(t, mux)).DeletePlaylist(ctx, "99", cred))
		assert.True(t, hit)
	})

	t.Run("HTTP 500", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := NewDeezerService(testOptions(t, mux)).Identify(ctx, cred)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})
}
