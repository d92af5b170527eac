// Package server provides HTTP routing, middleware, and OAuth handling for the CLI's account connection flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// `setlistx auth <service>` binds a [CallbackServer] on the configured host and port, opens the browser,
// waits for the redirect, stores the token in config.toml and shuts the server down.
// Spotify, YouTube (Google) and Deezer all use this flow; Deezer's non-standard token parameters
// arrive as exchange options.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
