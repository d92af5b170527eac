// package models defines the data model for the setlist playlist pipeline
package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ServiceKind selects the streaming service a playlist is built on.
type ServiceKind string

const (
	Spotify ServiceKind = "spotify"
	YouTube ServiceKind = "youtube"
	Deezer  ServiceKind = "deezer"
)

// ServiceKinds lists every supported service in display order.
var ServiceKinds = []ServiceKind{Spotify, YouTube, Deezer}

// ParseServiceKind converts user input into a [ServiceKind].
func ParseServiceKind(s string) (ServiceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spotify", "spot":
		return Spotify, nil
	case "youtube", "yt", "ytmusic", "youtube-music":
		return YouTube, nil
	case "deezer", "dz":
		return Deezer, nil
	default:
		return "", fmt.Errorf("unknown service %q (must be spotify, youtube or deezer)", s)
	}
}

// DisplayName returns the human readable service name.
func (k ServiceKind) DisplayName() string {
	switch k {
	case Spotify:
		return "Spotify"
	case YouTube:
		return "YouTube Music"
	case Deezer:
		return "Deezer"
	default:
		return string(k)
	}
}

// Credential is an externally managed token borrowed for the duration of one pipeline call.
type Credential struct {
	Token *oauth2.Token
}

// NewCredential wraps a bare access token.
func NewCredential(accessToken string) Credential {
	if accessToken == "" {
		return Credential{}
	}
	return Credential{Token: &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}}
}

// IsZero reports whether the credential carries no usable access token.
func (c Credential) IsZero() bool {
	return c.Token == nil || c.Token.AccessToken == ""
}

// Expired reports whether the token carries a known expiry that has already passed.
// Tokens without an expiry never count as expired.
func (c Credential) Expired() bool {
	return !c.IsZero() && !c.Token.Expiry.IsZero() && c.Token.Expiry.Before(time.Now())
}

// Usable reports whether the credential can be sent to a service as is.
func (c Credential) Usable() bool {
	return !c.IsZero() && !c.Expired()
}

// AccessToken returns the raw access token or an empty string.
func (c Credential) AccessToken() string {
	if c.IsZero() {
		return ""
	}
	return c.Token.AccessToken
}

// TokenSource returns a static [oauth2.TokenSource]. Refresh is the auth collaborator's job.
func (c Credential) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(c.Token)
}

// Setlist is the newest setlist with songs for an artist query.
type Setlist struct {
	ArtistQuery    string   `json:"artist_query"`
	ArtistName     string   `json:"artist_name,omitempty"`
	Disambiguation string   `json:"disambiguation,omitempty"`
	VenueName      string   `json:"venue_name,omitempty"`
	City           string   `json:"city,omitempty"`
	Country        string   `json:"country,omitempty"`
	Tour           string   `json:"tour,omitempty"`
	URL            string   `json:"url,omitempty"`
	EventDate      string   `json:"event_date"` // dd-mm-yyyy as returned by setlist.fm
	Songs          []string `json:"songs"`
}

// DisplayArtist prefers the resolved artist name over the raw query.
func (s *Setlist) DisplayArtist() string {
	if s.ArtistName != "" {
		return s.ArtistName
	}
	return s.ArtistQuery
}

// TrackMatch is the result of resolving one song title on a target service.
type TrackMatch struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Found      bool   `json:"found"`
	PlatformID string `json:"platform_id,omitempty"`
	Err        error  `json:"-"`
}

// FoundIDs returns the platform IDs of found matches in match order.
func FoundIDs(matches []TrackMatch) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Found && m.PlatformID != "" {
			ids = append(ids, m.PlatformID)
		}
	}
	return ids
}

// FailureReason explains why a playlist build did not succeed.
type FailureReason int

const (
	NoFailure FailureReason = iota
	CreateFailed
	NoTracksResolved
	AuthRequired
)

func (r FailureReason) String() string {
	switch r {
	case CreateFailed:
		return "create_failed"
	case NoTracksResolved:
		return "no_tracks_resolved"
	case AuthRequired:
		return "auth_required"
	default:
		return ""
	}
}

// PlaylistResult reports the outcome of the two-phase playlist build.
type PlaylistResult struct {
	Success        bool          `json:"success"`
	URL            string        `json:"url,omitempty"`
	PlaylistID     string        `json:"playlist_id,omitempty"`
	AddedCount     int           `json:"added_count"`
	RequestedCount int           `json:"requested_count"`
	FailureReason  FailureReason `json:"-"`
	Message        string        `json:"message,omitempty"`
	RolledBack     bool          `json:"rolled_back,omitempty"`
}
