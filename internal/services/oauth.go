package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	deezerAuthURL   = "https://connect.deezer.com/oauth/auth.php"
	deezerTokenURL  = "https://connect.deezer.com/oauth/access_token.php"
)

// OAuthConfig builds the authorization-code configuration for kind from app credentials.
func OAuthConfig(kind models.ServiceKind, app shared.AppConfig) (*oauth2.Config, error) {
	if !app.Configured() {
		return nil, fmt.Errorf("%w: %s client_id and client_secret", shared.ErrMissingCredentials, kind)
	}

	config := &oauth2.Config{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURL:  app.RedirectURI,
	}

	switch kind {
	case models.Spotify:
		config.Scopes = []string{"user-read-private", "playlist-modify-private", "playlist-modify-public"}
		config.Endpoint = oauth2.Endpoint{AuthURL: spotifyAuthURL, TokenURL: spotifyTokenURL}
	case models.YouTube:
		config.Scopes = []string{youtube.YoutubeScope}
		config.Endpoint = google.Endpoint
	case models.Deezer:
		config.Scopes = []string{"basic_access", "manage_library", "delete_library", "offline_access"}
		config.Endpoint = oauth2.Endpoint{
			AuthURL:   deezerAuthURL,
			TokenURL:  deezerTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		}
	default:
		return nil, fmt.Errorf("%w: unsupported service %q", shared.ErrInvalidArgument, kind)
	}
	return config, nil
}

// AuthCodeOptions returns the provider-specific parameters for AuthCodeURL.
// Deezer names its client "app_id" and joins permissions with commas.
func AuthCodeOptions(kind models.ServiceKind, config *oauth2.Config) []oauth2.AuthCodeOption {
	switch kind {
	case models.YouTube:
		return []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce}
	case models.Deezer:
		return []oauth2.AuthCodeOption{
			oauth2.SetAuthURLParam("app_id", config.ClientID),
			oauth2.SetAuthURLParam("perms", strings.Join(config.Scopes, ",")),
		}
	default:
		return nil
	}
}

// ExchangeOptions returns the provider-specific parameters for Exchange.
func ExchangeOptions(kind models.ServiceKind, config *oauth2.Config) []oauth2.AuthCodeOption {
	if kind != models.Deezer {
		return nil
	}
	return []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("app_id", config.ClientID),
		oauth2.SetAuthURLParam("secret", config.ClientSecret),
		oauth2.SetAuthURLParam("output", "json"),
	}
}

// PlaylistURL returns the public web link for a playlist ID.
func PlaylistURL(kind models.ServiceKind, id string) string {
	switch kind {
	case models.Spotify:
		return "https://open.spotify.com/playlist/" + url.PathEscape(id)
	case models.YouTube:
		return "https://www.youtube.com/playlist?list=" + url.QueryEscape(id)
	case models.Deezer:
		return "https://www.deezer.com/playlist/" + url.PathEscape(id)
	default:
		return ""
	}
}
