package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded example config to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	if r.configPath == "" {
		return fmt.Errorf("%w: --config path", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	return r.writePlain("✓ Config written to %s\nAdd your setlist.fm API key and service credentials, then run: setlistx auth <service>\n", r.configPath)
}

// ConfigShow prints the effective configuration as TOML with secrets masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	masked := *r.config
	masked.SetlistFM.APIKey = mask(masked.SetlistFM.APIKey)
	masked.Credentials.Spotify.ClientSecret = mask(masked.Credentials.Spotify.ClientSecret)
	masked.Credentials.YouTube.ClientSecret = mask(masked.Credentials.YouTube.ClientSecret)
	masked.Credentials.Deezer.ClientSecret = mask(masked.Credentials.Deezer.ClientSecret)
	for _, slot := range []*shared.TokenConfig{&masked.Tokens.Spotify, &masked.Tokens.YouTube, &masked.Tokens.Deezer} {
		slot.AccessToken = mask(slot.AccessToken)
		slot.RefreshToken = mask(slot.RefreshToken)
	}

	if err := toml.NewEncoder(r.output).Encode(masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// mask keeps the last four characters of a secret.
func mask(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return "****" + s[len(s)-4:]
}
