// package services defines interface Library for the remote playlist collections
package services

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Library defines the accessor contract over the two remote collections
// (source and mirror) and the recently-played feed.
//
// Implementations own pagination, write batching, and the access-credential
// lifecycle; callers never observe tokens or page boundaries.
type Library interface {
	// Authenticate establishes credentials with the service.
	// Expects a refresh_token (daemon use) or access_token in credentials.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// FetchSource retrieves the full source playlist with added-at timestamps.
	FetchSource(ctx context.Context) ([]PlaylistEntry, error)

	// FetchMirror retrieves the full mirror playlist with zero-based positions.
	FetchMirror(ctx context.Context) ([]MirrorEntry, error)

	// FetchRecentlyPlayed retrieves up to maxEvents most-recent play events,
	// distinct by track URI, using at most maxRequests paginated calls.
	// Returns whatever was collected when the service stops returning pages.
	FetchRecentlyPlayed(ctx context.Context, maxEvents, maxRequests int) ([]PlayEvent, error)

	// AppendToMirror appends tracks in the given order, batching as needed.
	// No-op on empty input.
	AppendToMirror(ctx context.Context, uris []string) error

	// RemoveFromMirror removes tracks by URI, batching as needed.
	// Removing an absent URI is a successful no-op.
	RemoveFromMirror(ctx context.Context, uris []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Library for providers using server-side OAuth2 flows.
// Used by the CLI login command to mint a refresh token.
type OAuthService interface {
	Library

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 config for the callback handler.
	GetOAuthConfig() *oauth2.Config
}

// PlaylistEntry represents one item in the source playlist and the moment
// it was added there. The source is never written by this system.
type PlaylistEntry struct {
	URI     string    // Stable track identifier; equality is by URI only
	AddedAt time.Time // When the item was added to the source playlist
}

// MirrorEntry represents one item currently in the mirror playlist.
type MirrorEntry struct {
	URI      string
	Position int // Zero-based ordinal position
}

// PlayEvent represents one playback of a track. Only the most recent event
// per URI matters for cooldown decisions.
type PlayEvent struct {
	URI      string
	PlayedAt time.Time
}
