// Spotify API implementation of [Library]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/spindle/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Per-request item cap for playlist writes, per the Web API docs
	maxWriteBatch = 100

	// Page sizes for reads
	playlistPageLimit = 100
	playerPageLimit   = 50
)

// SpotifyPlaylistItem represents a track within a playlist context.
type SpotifyPlaylistItem struct {
	AddedAt string `json:"added_at"`
	Track   struct {
		URI string `json:"uri"`
	} `json:"track"`
}

// SpotifyPlaylistItemsPage represents a paginated response of playlist items.
type SpotifyPlaylistItemsPage struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

// SpotifyPlayHistoryItem represents one entry in the recently-played feed.
type SpotifyPlayHistoryItem struct {
	PlayedAt string `json:"played_at"`
	Track    struct {
		URI string `json:"uri"`
	} `json:"track"`
}

// SpotifyPlayHistoryPage represents the cursor-paginated recently-played response.
type SpotifyPlayHistoryPage struct {
	Items   []SpotifyPlayHistoryItem `json:"items"`
	Next    *string                  `json:"next"`
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
}

// SpotifyLibrary implements the Library interface for the Spotify Web API.
// Uses [oauth2] for authentication; the refresh-token grant renews access
// tokens before expiry without caller involvement.
type SpotifyLibrary struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	sourceID   string
	mirrorID   string
}

// NewSpotifyLibrary creates a Spotify accessor for the given playlists.
func NewSpotifyLibrary(credentials map[string]string, sourceID, mirrorID string) (*SpotifyLibrary, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrFatalConfig)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrFatalConfig)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-private",
			"playlist-modify-public",
			"user-read-recently-played",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyLibrary{
		config:     config,
		httpClient: http.DefaultClient,
		// Spotify's rolling rate window tolerates a few requests per
		// second; stay well under it
		limiter:  rate.NewLimiter(rate.Limit(4), 4),
		baseURL:  spotifyBaseURL,
		sourceID: sourceID,
		mirrorID: mirrorID,
	}, nil
}

// Authenticate establishes the credential lifecycle. Expects a
// "refresh_token" (daemon use) or "access_token" in credentials.
//
// With a refresh token the [oauth2] transport acquires and renews access
// tokens before expiry; no caller ever observes token state.
func (s *SpotifyLibrary) Authenticate(ctx context.Context, credentials map[string]string) error {
	if refreshToken, ok := credentials["refresh_token"]; ok && refreshToken != "" {
		s.token = &oauth2.Token{RefreshToken: refreshToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: missing refresh_token or access_token in credentials", shared.ErrNoRefreshToken)
}

func (s *SpotifyLibrary) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyLibrary) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for the callback handler.
func (s *SpotifyLibrary) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated, rate-limited HTTP request against the
// Spotify API. kind selects which sentinel wraps transport faults.
func (s *SpotifyLibrary) doRequest(ctx context.Context, method, endpoint string, body, result any, kind error) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.statusError(resp.StatusCode, kind)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", kind, err)
		}
	}

	return nil
}

// statusError maps an API status code onto the error taxonomy. A playlist
// that is missing or forbidden is a configuration problem, not a transient
// fault, so retrying on schedule would never help.
func (s *SpotifyLibrary) statusError(status int, kind error) error {
	switch status {
	case http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("%w: spotify API status %d", shared.ErrFatalConfig, status)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAuthFailed, status)
	default:
		return fmt.Errorf("%w: spotify API status %d", kind, status)
	}
}

// fetchPlaylistItems retrieves every item of a playlist, walking offset
// pagination transparently.
func (s *SpotifyLibrary) fetchPlaylistItems(ctx context.Context, playlistID string) ([]SpotifyPlaylistItem, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist ID not configured", shared.ErrFatalConfig)
	}

	fields := url.QueryEscape("items(added_at,track.uri),next,total,limit,offset")

	var items []SpotifyPlaylistItem
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d&fields=%s",
			playlistID, playlistPageLimit, offset, fields)

		var page SpotifyPlaylistItemsPage
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page, shared.ErrTransientFetch); err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += playlistPageLimit
	}

	return items, nil
}

// FetchSource retrieves the full source playlist with added-at timestamps.
func (s *SpotifyLibrary) FetchSource(ctx context.Context) ([]PlaylistEntry, error) {
	items, err := s.fetchPlaylistItems(ctx, s.sourceID)
	if err != nil {
		return nil, err
	}

	entries := make([]PlaylistEntry, 0, len(items))
	for _, item := range items {
		if item.Track.URI == "" {
			// Local files and removed tracks surface with no URI
			continue
		}
		addedAt, err := time.Parse(time.RFC3339, item.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad added_at %q: %v", shared.ErrTransientFetch, item.AddedAt, err)
		}
		entries = append(entries, PlaylistEntry{URI: item.Track.URI, AddedAt: addedAt})
	}

	return entries, nil
}

// FetchMirror retrieves the full mirror playlist with zero-based positions.
func (s *SpotifyLibrary) FetchMirror(ctx context.Context) ([]MirrorEntry, error) {
	items, err := s.fetchPlaylistItems(ctx, s.mirrorID)
	if err != nil {
		return nil, err
	}

	entries := make([]MirrorEntry, 0, len(items))
	for _, item := range items {
		if item.Track.URI == "" {
			continue
		}
		entries = append(entries, MirrorEntry{URI: item.Track.URI, Position: len(entries)})
	}

	return entries, nil
}

// FetchRecentlyPlayed retrieves up to maxEvents most-recent play events,
// distinct by URI (keeping the newest per track), using at most maxRequests
// cursor-paginated calls to the player API.
//
// Best-effort: once at least one page has been collected, pagination faults
// return the partial result instead of an error.
func (s *SpotifyLibrary) FetchRecentlyPlayed(ctx context.Context, maxEvents, maxRequests int) ([]PlayEvent, error) {
	if maxEvents <= 0 {
		return nil, nil
	}
	if maxRequests <= 0 {
		maxRequests = 1
	}

	latest := make(map[string]time.Time)
	var order []string
	before := ""

	for req := 0; req < maxRequests && len(latest) < maxEvents; req++ {
		endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", playerPageLimit)
		if before != "" {
			endpoint += "&before=" + url.QueryEscape(before)
		}

		var page SpotifyPlayHistoryPage
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page, shared.ErrTransientFetch); err != nil {
			if req == 0 {
				return nil, err
			}
			break
		}

		for _, item := range page.Items {
			if item.Track.URI == "" {
				continue
			}
			playedAt, err := time.Parse(time.RFC3339, item.PlayedAt)
			if err != nil {
				continue
			}
			if prev, seen := latest[item.Track.URI]; !seen {
				latest[item.Track.URI] = playedAt
				order = append(order, item.Track.URI)
			} else if playedAt.After(prev) {
				latest[item.Track.URI] = playedAt
			}
		}

		if page.Next == nil || page.Cursors.Before == "" || len(page.Items) == 0 {
			break
		}
		before = page.Cursors.Before
	}

	events := make([]PlayEvent, 0, len(latest))
	for _, uri := range order {
		if len(events) == maxEvents {
			break
		}
		events = append(events, PlayEvent{URI: uri, PlayedAt: latest[uri]})
	}

	return events, nil
}

// AppendToMirror appends tracks in order, chunked into the API's per-request
// write cap. Relative order is preserved across chunk boundaries.
func (s *SpotifyLibrary) AppendToMirror(ctx context.Context, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", s.mirrorID)

	for start := 0; start < len(uris); start += maxWriteBatch {
		end := min(start+maxWriteBatch, len(uris))
		body := map[string]any{"uris": uris[start:end]}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil, shared.ErrTransientWrite); err != nil {
			return err
		}
	}

	return nil
}

// RemoveFromMirror removes tracks by URI, chunked into the write cap.
// The API treats removal of an absent URI as success, so the call is
// idempotent.
func (s *SpotifyLibrary) RemoveFromMirror(ctx context.Context, uris []string) error {
	if len(uris) == 0 {
		return nil
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", s.mirrorID)

	type trackRef struct {
		URI string `json:"uri"`
	}

	for start := 0; start < len(uris); start += maxWriteBatch {
		end := min(start+maxWriteBatch, len(uris))
		refs := make([]trackRef, 0, end-start)
		for _, uri := range uris[start:end] {
			refs = append(refs, trackRef{URI: uri})
		}
		body := map[string]any{"tracks": refs}
		if err := s.doRequest(ctx, http.MethodDelete, endpoint, body, nil, shared.ErrTransientWrite); err != nil {
			return err
		}
	}

	return nil
}
