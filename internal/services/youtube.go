// YouTube Data API v3 implementation of [Service]
//
// Playlists created here appear in YouTube Music for the same channel.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubePrivacy   = "private"
	youtubeVideoKind = "youtube#video"
)

// YouTubeService implements [Service] for the YouTube Data API.
type YouTubeService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	query      QueryDialect
}

// NewYouTubeService creates a YouTube service. An empty BaseURL uses the library default.
func NewYouTubeService(opts Options) *YouTubeService {
	opts = opts.withDefaults()
	return &YouTubeService{
		baseURL:    withSlash(opts.BaseURL),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		query:      VideoQuery,
	}
}

func (y *YouTubeService) Kind() models.ServiceKind { return models.YouTube }

// Name returns the service name.
func (y *YouTubeService) Name() string { return models.YouTube.DisplayName() }

func (y *YouTubeService) service(ctx context.Context, cred models.Credential) (*youtube.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(authorizedClient(ctx, y.httpClient, cred))}
	if y.baseURL != "" {
		opts = append(opts, option.WithEndpoint(y.baseURL))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: youtube client: %v", shared.ErrAPIRequest, err)
	}
	return svc, nil
}

// Identify returns the ID of the authorized user's own channel.
func (y *YouTubeService) Identify(ctx context.Context, cred models.Credential) (string, error) {
	svc, err := y.service(ctx, cred)
	if err != nil {
		return "", err
	}

	resp, err := svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", y.wrap("identify channel", err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: account has no YouTube channel", shared.ErrAPIRequest)
	}
	return resp.Items[0].Id, nil
}

// SearchTrack searches videos and returns the first video ID.
func (y *YouTubeService) SearchTrack(ctx context.Context, title, artist string, cred models.Credential) (string, bool, error) {
	svc, err := y.service(ctx, cred)
	if err != nil {
		return "", false, err
	}

	q := y.query(title, artist)
	resp, err := svc.Search.List([]string{"id"}).Q(q).Type("video").MaxResults(1).Context(ctx).Do()
	if err != nil {
		return "", false, y.wrap("search "+q, err)
	}
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			return item.Id.VideoId, true, nil
		}
	}
	return "", false, nil
}

// CreatePlaylist inserts a playlist with private visibility unless spec.Public is set.
// The owner is implied by the credential.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, _ string, spec PlaylistSpec, cred models.Credential) (*CreatedPlaylist, error) {
	svc, err := y.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	privacy := youtubePrivacy
	if spec.Public {
		privacy = "public"
	}

	playlist := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{Title: spec.Name, Description: spec.Description},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: privacy},
	}
	created, err := svc.Playlists.Insert([]string{"snippet", "status"}, playlist).Context(ctx).Do()
	if err != nil {
		return nil, y.wrap("create playlist", err)
	}
	if created.Id == "" {
		return nil, fmt.Errorf("%w: create playlist: empty id", shared.ErrAPIRequest)
	}
	return &CreatedPlaylist{ID: created.Id, URL: PlaylistURL(models.YouTube, created.Id)}, nil
}

// AddItems inserts videos one at a time. A failed insert skips that video;
// auth failures and cancellation stop the loop.
func (y *YouTubeService) AddItems(ctx context.Context, playlistID string, ids []string, cred models.Credential) (int, error) {
	svc, err := y.service(ctx, cred)
	if err != nil {
		return 0, err
	}

	added := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return added, errors.Join(append(errs, err)...)
		}

		item := &youtube.PlaylistItem{
			Snippet: &youtube.PlaylistItemSnippet{
				PlaylistId: playlistID,
				ResourceId: &youtube.ResourceId{Kind: youtubeVideoKind, VideoId: id},
			},
		}
		if _, err := svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do(); err != nil {
			wrapped := y.wrap("add video "+id, err)
			if errors.Is(wrapped, shared.ErrAuthRequired) {
				return added, errors.Join(append(errs, wrapped)...)
			}
			y.logger.Warn("skipping video", "video", id, "error", err)
			errs = append(errs, wrapped)
			continue
		}
		added++
	}
	return added, errors.Join(errs...)
}

// DeletePlaylist deletes the playlist.
func (y *YouTubeService) DeletePlaylist(ctx context.Context, playlistID string, cred models.Credential) error {
	svc, err := y.service(ctx, cred)
	if err != nil {
		return err
	}
	if err := svc.Playlists.Delete(playlistID).Context(ctx).Do(); err != nil {
		return y.wrap("delete playlist", err)
	}
	return nil
}

func (y *YouTubeService) wrap(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
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
