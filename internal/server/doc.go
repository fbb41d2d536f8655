// Package server provides HTTP routing and OAuth callback handling for the
// CLI login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback. It
// validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel.
// Only one callback is processed to prevent replay.
//
// # Usage
//
// `spindle auth login` starts a temporary HTTP server on the configured
// callback address, opens the browser to the authorization URL, waits for
// the callback, and shuts the server down. The refresh token from the
// exchanged grant is written back to the config file; the daemon then runs
// non-interactively on that token.
package server
