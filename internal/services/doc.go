// Package services defines the [Library] interface over the remote playlist
// collections and implements it for the Spotify Web API.
//
// # Library Interface
//
// The sync engine consumes three reads (source playlist, mirror playlist,
// recently-played feed) and two writes (append, remove). Pagination, write
// batching, and credential refresh live entirely behind this boundary.
//
// # Spotify Implementation
//
// [SpotifyLibrary] uses OAuth2 with the refresh-token grant.
//
// The [oauth2] client transparently acquires and renews access tokens before
// expiry, so long-running daemon invocations never re-authenticate by hand.
//
// Playlist reads walk offset pagination (100 items per page, trimmed with the
// fields query); the recently-played feed walks cursor pagination (50 per
// page) under a bounded request budget. Writes are chunked to the documented
// 100-item cap with order preserved across chunks. A client-side
// [rate.Limiter] paces every request.
//
// # Error Handling
//
// Services wrap typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrFatalConfig] : playlist unconfigured, missing, or forbidden
//   - [shared.ErrTransientFetch] / [shared.ErrTransientWrite] : network and
//     HTTP faults that the next scheduled run is expected to absorb
package services
