package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/server"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// Auth performs the OAuth2 authorization code flow for one service.
//
// Starts a local callback server, opens the browser for user authorization, and stores the exchanged token in the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseServiceKind(cmd.StringArg("service"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	config, err := services.OAuthConfig(kind, r.config.Credentials.For(kind))
	if err != nil {
		return fmt.Errorf("%w (set [credentials.%s] client_id and client_secret)", err, kind)
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = authTimeout
	}

	token, err := r.doOAuth(ctx, kind, config, timeout)
	if err != nil {
		return err
	}

	if err := r.saveTokens(kind, token); err != nil {
		return err
	}

	r.writePlainln("✓ %s connected", kind.DisplayName())
	if r.configPath != "" {
		r.writePlain("✓ Token saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now use: setlistx create <artist> --service %s\n", kind)
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, kind models.ServiceKind, config *oauth2.Config, timeout time.Duration) (*oauth2.Token, error) {
	state := shared.GenerateID()

	handler := server.NewOAuthHandler(config, state, kind.DisplayName(), services.ExchangeOptions(kind, config)...)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	srv, err := server.Listen(r.config.Server.Addr(), router, r.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer srv.Close()

	authURL := config.AuthCodeURL(state, services.AuthCodeOptions(kind, config)...)

	r.writePlain("→ Opening browser for %s authorization...\n", kind.DisplayName())
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	token, err := handler.Wait(waitCtx, srv.Errors())
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

// saveTokens stores token for kind in memory and in the config file.
//
// The file is re-read first so environment overrides applied in memory are not persisted.
func (r *Runner) saveTokens(kind models.ServiceKind, token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}

	slot := r.config.Tokens.For(kind)
	if slot == nil {
		return fmt.Errorf("%w: unsupported service %q", shared.ErrInvalidArgument, kind)
	}
	if err := slot.Update(token); err != nil {
		return fmt.Errorf("failed to update %s configuration: %w", kind, err)
	}

	if r.configPath == "" {
		return nil
	}

	onDisk, err := shared.LoadConfig(r.configPath)
	if errors.Is(err, os.ErrNotExist) {
		onDisk, err = shared.DefaultConfig(), nil
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	*onDisk.Tokens.For(kind) = *slot
	if err := shared.SaveConfig(r.configPath, onDisk); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// refreshToken exchanges the stored refresh token when the access token for kind has expired.
//
// Failures are logged and leave the stored token as is; the pipeline then reports AuthRequired.
func (r *Runner) refreshToken(ctx context.Context, kind models.ServiceKind) {
	cred := r.credential(kind)
	if !cred.Expired() || cred.Token.RefreshToken == "" {
		return
	}

	config, err := services.OAuthConfig(kind, r.config.Credentials.For(kind))
	if err != nil {
		r.logger.Warn("cannot refresh token", "service", kind, "error", err)
		return
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client())
	token, err := config.TokenSource(ctx, cred.Token).Token()
	if err != nil {
		r.logger.Warn("token refresh failed", "service", kind, "error", err)
		return
	}

	if err := r.saveTokens(kind, token); err != nil {
		r.logger.Warn("failed to save refreshed token", "service", kind, "error", err)
		return
	}
	r.logger.Debug("refreshed access token", "service", kind, "expiry", token.Expiry)
}

// AuthStatus lists each service's app registration and stored token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Service connections")
	for _, kind := range models.ServiceKinds {
		app := "✗ app not configured"
		if r.config.Credentials.For(kind).Configured() {
			app = "✓ app configured"
		}

		cred := r.credential(kind)
		token := "✗ not connected"
		switch {
		case cred.IsZero():
		case cred.Expired():
			token = fmt.Sprintf("⚠ token expired %s", cred.Token.Expiry.Local().Format(time.RFC822))
		default:
			token = "✓ connected"
		}

		r.writePlain("%-14s %-22s %s\n", kind.DisplayName(), app, token)
	}
	return nil
}
