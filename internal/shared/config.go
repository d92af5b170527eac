package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	maxConcurrency    = 5
	placeholderPrefix = "your_"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	SetlistFM   SetlistFMConfig   `toml:"setlistfm"`
	Credentials CredentialsConfig `toml:"credentials"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Server      ServerConfig      `toml:"server"`
	Tokens      TokensConfig      `toml:"tokens"`
}

// SetlistFMConfig contains setlist.fm API settings.
type SetlistFMConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// CredentialsConfig contains OAuth application credentials per streaming service.
type CredentialsConfig struct {
	Spotify AppConfig `toml:"spotify"`
	YouTube AppConfig `toml:"youtube"`
	Deezer  AppConfig `toml:"deezer"`
}

// AppConfig contains one service's OAuth client registration and API base URL.
//
// For Deezer, ClientID is the app_id and ClientSecret the app secret.
type AppConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	BaseURL      string `toml:"base_url"`
}

// Configured reports whether the client id and secret are set.
// Values left as "your_..." placeholders count as unset.
func (a AppConfig) Configured() bool {
	return isSet(a.ClientID) && isSet(a.ClientSecret)
}

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.HasPrefix(v, placeholderPrefix)
}

// For returns the app config of the given service.
func (c CredentialsConfig) For(kind models.ServiceKind) AppConfig {
	switch kind {
	case models.Spotify:
		return c.Spotify
	case models.YouTube:
		return c.YouTube
	case models.Deezer:
		return c.Deezer
	default:
		return AppConfig{}
	}
}

// PipelineConfig tunes outbound calls made by the pipeline.
type PipelineConfig struct {
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Concurrency    int     `toml:"concurrency"`
	RateLimit      float64 `toml:"rate_limit"` // search requests per second, 0 disables pacing
	RollbackEmpty  bool    `toml:"rollback_empty"`
}

// Timeout returns the per-request timeout.
func (p PipelineConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Workers returns the resolution fan-out clamped to 1..5, or 0 to use the resolver default.
func (p PipelineConfig) Workers() int {
	switch {
	case p.Concurrency <= 0:
		return 0
	case p.Concurrency > maxConcurrency:
		return maxConcurrency
	default:
		return p.Concurrency
	}
}

// ServerConfig contains the local OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TokensConfig stores tokens obtained by the auth command.
type TokensConfig struct {
	Spotify TokenConfig `toml:"spotify"`
	YouTube TokenConfig `toml:"youtube"`
	Deezer  TokenConfig `toml:"deezer"`
}

// For returns a pointer to the token slot of the given service.
func (t *TokensConfig) For(kind models.ServiceKind) *TokenConfig {
	switch kind {
	case models.Spotify:
		return &t.Spotify
	case models.YouTube:
		return &t.YouTube
	case models.Deezer:
		return &t.Deezer
	default:
		return nil
	}
}

// TokenConfig is a serialized [oauth2.Token].
type TokenConfig struct {
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	TokenType    string `toml:"token_type,omitempty"`
	Expiry       string `toml:"expiry,omitempty"` // RFC 3339
}

// Update copies token into the config entry.
func (t *TokenConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}

	t.AccessToken = token.AccessToken
	t.RefreshToken = token.RefreshToken
	t.TokenType = token.TokenType
	t.Expiry = ""
	if !token.Expiry.IsZero() {
		t.Expiry = token.Expiry.UTC().Format(time.RFC3339)
	}
	return nil
}

// Credential converts the stored token into a [models.Credential].
func (t TokenConfig) Credential() models.Credential {
	if t.AccessToken == "" {
		return models.Credential{}
	}

	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if exp, err := time.Parse(time.RFC3339, t.Expiry); err == nil {
		token.Expiry = exp
	}
	return models.Credential{Token: token}
}

// envOverrides maps environment variables onto config fields. Empty values are ignored.
type envOverrides struct {
	SetlistFMAPIKey     string `envconfig:"SETLISTFM_API_KEY"`
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET"`
	SpotifyAccessToken  string `envconfig:"SPOTIFY_ACCESS_TOKEN"`
	YouTubeClientID     string `envconfig:"YOUTUBE_CLIENT_ID"`
	YouTubeClientSecret string `envconfig:"YOUTUBE_CLIENT_SECRET"`
	YouTubeAccessToken  string `envconfig:"YOUTUBE_ACCESS_TOKEN"`
	DeezerAppID         string `envconfig:"DEEZER_APP_ID"`
	DeezerSecret        string `envconfig:"DEEZER_SECRET"`
	DeezerAccessToken   string `envconfig:"DEEZER_ACCESS_TOKEN"`
}

// ApplyEnv overlays non-empty environment variables onto the config.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&c.SetlistFM.APIKey, env.SetlistFMAPIKey)
	set(&c.Credentials.Spotify.ClientID, env.SpotifyClientID)
	set(&c.Credentials.Spotify.ClientSecret, env.SpotifyClientSecret)
	set(&c.Tokens.Spotify.AccessToken, env.SpotifyAccessToken)
	set(&c.Credentials.YouTube.ClientID, env.YouTubeClientID)
	set(&c.Credentials.YouTube.ClientSecret, env.YouTubeClientSecret)
	set(&c.Tokens.YouTube.AccessToken, env.YouTubeAccessToken)
	set(&c.Credentials.Deezer.ClientID, env.DeezerAppID)
	set(&c.Credentials.Deezer.ClientSecret, env.DeezerSecret)
	set(&c.Tokens.Deezer.AccessToken, env.DeezerAccessToken)
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
