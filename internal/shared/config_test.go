package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.SetlistFM.BaseURL != "https://api.setlist.fm/rest/1.0" {
			t.Errorf("expected setlist.fm base URL, got %s", config.SetlistFM.BaseURL)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Pipeline.Timeout() != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", config.Pipeline.Timeout())
		}

		if config.Pipeline.Workers() != 3 {
			t.Errorf("expected 3 workers, got %d", config.Pipeline.Workers())
		}

		if config.Pipeline.RollbackEmpty {
			t.Error("expected rollback_empty to default to false")
		}

		for _, kind := range models.ServiceKinds {
			if config.Credentials.For(kind).Configured() {
				t.Errorf("expected %s app to be unconfigured by default", kind)
			}
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Server.Addr() != defaultConfig.Server.Addr() {
			t.Errorf("created config server address doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[setlistfm]
api_key = "fm-key"

[server]
host = "0.0.0.0"
port = 8080

[pipeline]
timeout_seconds = 3
concurrency = 9
rollback_empty = true

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[tokens.deezer]
access_token = "dz-token"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.SetlistFM.APIKey != "fm-key" {
			t.Errorf("expected api key fm-key, got %s", config.SetlistFM.APIKey)
		}

		if config.SetlistFM.BaseURL != "https://api.setlist.fm/rest/1.0" {
			t.Errorf("expected missing keys to keep defaults, got %s", config.SetlistFM.BaseURL)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected server addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Pipeline.Timeout() != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", config.Pipeline.Timeout())
		}

		if config.Pipeline.Workers() != 5 {
			t.Errorf("expected workers clamped to 5, got %d", config.Pipeline.Workers())
		}

		if !config.Pipeline.RollbackEmpty {
			t.Error("expected rollback_empty true")
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if got := config.Tokens.Deezer.Credential().AccessToken(); got != "dz-token" {
			t.Errorf("expected deezer token dz-token, got %s", got)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.toml")
		config := DefaultConfig()
		config.SetlistFM.APIKey = "saved"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatalf("config file should exist: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.SetlistFM.APIKey != "saved" {
			t.Errorf("expected saved api key, got %s", loaded.SetlistFM.APIKey)
		}
	})

	t.Run("Workers", func(t *testing.T) {
		tests := map[int]int{-1: 0, 0: 0, 1: 1, 3: 3, 5: 5, 6: 5}
		for in, want := range tests {
			if got := (PipelineConfig{Concurrency: in}).Workers(); got != want {
				t.Errorf("Workers(%d) = %d, want %d", in, got, want)
			}
		}
	})

	t.Run("CredentialsConfig.For", func(t *testing.T) {
		creds := CredentialsConfig{
			Spotify: AppConfig{ClientID: "sp", ClientSecret: "x"},
			Deezer:  AppConfig{ClientID: "dz"},
		}

		if !creds.For(models.Spotify).Configured() {
			t.Error("expected spotify to be configured")
		}
		if creds.For(models.Deezer).Configured() {
			t.Error("expected deezer without secret to be unconfigured")
		}
		if (AppConfig{ClientID: "your_spotify_client_id", ClientSecret: "your_spotify_client_secret"}).Configured() {
			t.Error("expected placeholder values to count as unset")
		}
		if creds.For(models.ServiceKind("tidal")) != (AppConfig{}) {
			t.Error("expected unknown service to return an empty config")
		}
	})
}

func TestTokenConfig(t *testing.T) {
	t.Run("Update and Credential", func(t *testing.T) {
		var tokens TokensConfig
		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		slot := tokens.For(models.YouTube)
		err := slot.Update(&oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: expiry})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if tokens.YouTube.Expiry != "2026-01-02T03:04:05Z" {
			t.Errorf("expected RFC 3339 expiry, got %s", tokens.YouTube.Expiry)
		}

		cred := tokens.YouTube.Credential()
		if cred.AccessToken() != "a" || cred.Token.RefreshToken != "r" {
			t.Errorf("unexpected credential %+v", cred.Token)
		}
		if !cred.Token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, cred.Token.Expiry)
		}
	})

	t.Run("Update rejects empty tokens", func(t *testing.T) {
		var slot TokenConfig
		if err := slot.Update(nil); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if err := slot.Update(&oauth2.Token{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("empty slot is a zero credential", func(t *testing.T) {
		if !(TokenConfig{}).Credential().IsZero() {
			t.Error("expected zero credential")
		}
	})

	t.Run("unknown service has no slot", func(t *testing.T) {
		var tokens TokensConfig
		if tokens.For(models.ServiceKind("tidal")) != nil {
			t.Error("expected nil slot")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SETLISTFM_API_KEY", "env-fm")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-sp-id")
	t.Setenv("SPOTIFY_ACCESS_TOKEN", "env-sp-token")
	t.Setenv("DEEZER_APP_ID", "env-dz-app")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "")

	config := DefaultConfig()
	config.Credentials.YouTube.ClientSecret = "file-secret"

	if err := config.ApplyEnv(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if config.SetlistFM.APIKey != "env-fm" {
		t.Errorf("expected env api key, got %s", config.SetlistFM.APIKey)
	}
	if config.Credentials.Spotify.ClientID != "env-sp-id" {
		t.Errorf("expected env spotify client id, got %s", config.Credentials.Spotify.ClientID)
	}
	if config.Tokens.Spotify.AccessToken != "env-sp-token" {
		t.Errorf("expected env spotify token, got %s", config.Tokens.Spotify.AccessToken)
	}
	if config.Credentials.Deezer.ClientID != "env-dz-app" {
		t.Errorf("expected env deezer app id, got %s", config.Credentials.Deezer.ClientID)
	}
	if config.Credentials.YouTube.ClientSecret != "file-secret" {
		t.Errorf("expected empty env var to keep file value, got %s", config.Credentials.YouTube.ClientSecret)
	}
}
