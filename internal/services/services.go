// package services defines interface Service for interacting with streaming service HTTP APIs
//
// Spotify, YouTube, Deezer
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"golang.org/x/oauth2"
)

// Service defines the capability set every streaming service variant provides to the pipeline.
//
// Implementations hold no per-user state; the [models.Credential] is passed into each call.
type Service interface {
	// Kind returns the service selector this implementation serves.
	Kind() models.ServiceKind

	// Name returns the name of the service (e.g., "Spotify", "YouTube Music")
	Name() string

	// Identify returns the platform user (or channel) ID that owns created playlists.
	Identify(ctx context.Context, cred models.Credential) (string, error)

	// SearchTrack runs a single strict search and returns the first hit's ID.
	// An empty result is found=false with a nil error.
	SearchTrack(ctx context.Context, title, artist string, cred models.Credential) (id string, found bool, err error)

	// CreatePlaylist creates an empty playlist container.
	CreatePlaylist(ctx context.Context, owner string, spec PlaylistSpec, cred models.Credential) (*CreatedPlaylist, error)

	// AddItems attaches ids in order and returns how many were added, even when err is non-nil.
	AddItems(ctx context.Context, playlistID string, ids []string, cred models.Credential) (added int, err error)

	// DeletePlaylist removes (or unfollows) a playlist created by this service.
	DeletePlaylist(ctx context.Context, playlistID string, cred models.Credential) error
}

// PlaylistSpec describes a playlist container to create.
type PlaylistSpec struct {
	Name        string
	Description string
	Public      bool
}

// CreatedPlaylist is the remote container returned by [Service.CreatePlaylist].
type CreatedPlaylist struct {
	ID  string
	URL string
}

// QueryDialect renders the search query for one song.
type QueryDialect func(title, artist string) string

// FieldQuery is the structured field search used by Spotify and Deezer.
func FieldQuery(title, artist string) string {
	return fmt.Sprintf(`track:"%s" artist:"%s"`, unquote(title), unquote(artist))
}

// VideoQuery is the free-text video search used by YouTube.
func VideoQuery(title, artist string) string {
	return shared.CollapseSpaces(fmt.Sprintf("%s %s official", artist, title))
}

// withSlash ensures a non-empty base URL ends in "/" so relative paths resolve under it.
func withSlash(base string) string {
	if base == "" || strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

func unquote(s string) string {
	return shared.CollapseSpaces(strings.ReplaceAll(s, `"`, ""))
}

// Options configures a [Service] implementation.
type Options struct {
	BaseURL    string       // API base URL override, mainly for tests
	HTTPClient *http.Client // base client; its Timeout bounds every call
	Logger     *log.Logger
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = shared.NewHTTPClient(shared.DefaultTimeout)
	}
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	return o
}

// New builds the [Service] variant for kind.
func New(kind models.ServiceKind, opts Options) (Service, error) {
	switch kind {
	case models.Spotify:
		return NewSpotifyService(opts), nil
	case models.YouTube:
		return NewYouTubeService(opts), nil
	case models.Deezer:
		return NewDeezerService(opts), nil
	default:
		return nil, fmt.Errorf("%w: unsupported service %q", shared.ErrInvalidArgument, kind)
	}
}

// authorizedClient wraps base with a static bearer token, keeping base's transport and timeout.
func authorizedClient(ctx context.Context, base *http.Client, cred models.Credential) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, cred.TokenSource())
	client.Timeout = base.Timeout
	return client
}

// chunk splits ids into slices of at most size elements.
func chunk(ids []string, size int) [][]string {
	var out [][]string
	for size < len(ids) {
		ids, out = ids[size:], append(out, ids[:size])
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
