// Spotify Web API implementation of [Service]
//
// Built on github.com/zmb3/spotify/v2; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// spotifyMaxAdd is the largest batch the add-items endpoint accepts.
const spotifyMaxAdd = 100

// SpotifyService implements [Service] for the Spotify Web API.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	query      QueryDialect
}

// NewSpotifyService creates a Spotify service. An empty BaseURL uses the library default.
func NewSpotifyService(opts Options) *SpotifyService {
	opts = opts.withDefaults()
	return &SpotifyService{
		baseURL:    withSlash(opts.BaseURL),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		query:      FieldQuery,
	}
}

func (s *SpotifyService) Kind() models.ServiceKind { return models.Spotify }

func (s *SpotifyService) Name() string { return models.Spotify.DisplayName() }

func (s *SpotifyService) client(ctx context.Context, cred models.Credential) *spotify.Client {
	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}
	return spotify.New(authorizedClient(ctx, s.httpClient, cred), opts...)
}

// Identify returns the current user's Spotify ID.
func (s *SpotifyService) Identify(ctx context.Context, cred models.Credential) (string, error) {
	user, err := s.client(ctx, cred).CurrentUser(ctx)
	if err != nil {
		return "", s.wrap("identify user", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: empty user id", shared.ErrAPIRequest)
	}
	return user.ID, nil
}

// SearchTrack runs a field search and returns the first track's ID.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string, cred models.Credential) (string, bool, error) {
	q := s.query(title, artist)
	results, err := s.client(ctx, cred).Search(ctx, q, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return "", false, s.wrap("search "+q, err)
	}
	if results == nil || results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return "", false, nil
	}
	return results.Tracks.Tracks[0].ID.String(), true, nil
}

// CreatePlaylist creates a non-collaborative playlist owned by owner.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, owner string, spec PlaylistSpec, cred models.Credential) (*CreatedPlaylist, error) {
	playlist, err := s.client(ctx, cred).CreatePlaylistForUser(ctx, owner, spec.Name, spec.Description, spec.Public, false)
	if err != nil {
		return nil, s.wrap("create playlist", err)
	}

	url := playlist.ExternalURLs["spotify"]
	if url == "" {
		url = PlaylistURL(models.Spotify, playlist.ID.String())
	}
	return &CreatedPlaylist{ID: playlist.ID.String(), URL: url}, nil
}

// AddItems adds track IDs in chunks of 100, stopping at the first failed chunk.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, ids []string, cred models.Credential) (int, error) {
	client := s.client(ctx, cred)
	added := 0
	for _, batch := range chunk(ids, spotifyMaxAdd) {
		trackIDs := make([]spotify.ID, len(batch))
		for i, id := range batch {
			trackIDs[i] = spotify.ID(id)
		}

		if _, err := client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs...); err != nil {
			return added, s.wrap("add tracks", err)
		}
		added += len(batch)
		s.logger.Debug("added tracks", "playlist", playlistID, "count", added)
	}
	return added, nil
}

// DeletePlaylist unfollows the playlist, which is how Spotify deletes one.
func (s *SpotifyService) DeletePlaylist(ctx context.Context, playlistID string, cred models.Credential) error {
	if err := s.client(ctx, cred).UnfollowPlaylist(ctx, spotify.ID(playlistID)); err != nil {
		return s.wrap("delete playlist", err)
	}
	return nil
}

func (s *SpotifyService) wrap(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s: %v", shared.ErrAuthRequired, op, err)
	}

	var tokenErr *oauth2.RetrieveError
	if errors.As(err, &tokenErr) {
		return fmt.Errorf("%w: %s: %v", shared.ErrAuthRequired, op, err)
	}

	if shared.IsTimeout(err) {
		return fmt.Errorf("%w: %w: %s: %v", shared.ErrAPIRequest, shared.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}
