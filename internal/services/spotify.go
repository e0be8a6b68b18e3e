// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vic3r/spotify-search/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyService implements the [Catalog] interface against the Spotify Web
// API, authenticating every call with a cached client-credentials token.
type SpotifyService struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	safetyMargin time.Duration
	httpClient   *http.Client
	logger       *log.Logger

	mu    sync.RWMutex
	token *oauth2.Token // guarded by mu, replaced wholesale on refresh
}

var _ Catalog = (*SpotifyService)(nil)

// NewSpotifyService creates a new Spotify service from the gateway config.
// The HTTP client and logger default to [http.DefaultClient] and a stderr logger.
func NewSpotifyService(cfg *shared.Config, client *http.Client, logger *log.Logger) (*SpotifyService, error) {
	if cfg.Credentials.Spotify.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id", shared.ErrMissingCredentials)
	}
	if cfg.Credentials.Spotify.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_secret", shared.ErrMissingCredentials)
	}

	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	baseURL := cfg.Upstream.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	tokenURL := cfg.Upstream.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	margin := DefaultTokenSafetyMargin
	if cfg.Upstream.TokenSafetyMarginSeconds > 0 {
		margin = time.Duration(cfg.Upstream.TokenSafetyMarginSeconds) * time.Second
	}

	return &SpotifyService{
		clientID:     cfg.Credentials.Spotify.ClientID,
		clientSecret: cfg.Credentials.Spotify.ClientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenURL:     tokenURL,
		safetyMargin: margin,
		httpClient:   client,
		logger:       shared.WithLogger(logger, "service", "spotify"),
	}, nil
}

// get performs an authenticated GET against the Spotify API and decodes the
// JSON response into result.
func (s *SpotifyService) get(ctx context.Context, op, endpoint string, result any) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return &shared.UpstreamError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &shared.UpstreamError{Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &shared.UpstreamError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &shared.UpstreamError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

// SearchTracks searches the Spotify catalog for tracks.
//
// limit is clamped to 1..=MaxSearchLimit (non-positive selects the default of
// DefaultSearchLimit) and offset to 0..=MaxSearchOffset before the request is
// sent; out-of-range values are never an error.
func (s *SpotifyService) SearchTracks(ctx context.Context, q string, limit, offset int) (*SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	if offset < 0 {
		offset = DefaultSearchOffset
	}
	if offset > MaxSearchOffset {
		offset = MaxSearchOffset
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d&offset=%d", url.QueryEscape(q), limit, offset)

	var response struct {
		Tracks struct {
			Items  []Track `json:"items"`
			Total  int     `json:"total"`
			Limit  int     `json:"limit"`
			Offset int     `json:"offset"`
		} `json:"tracks"`
	}

	if err := s.get(ctx, "search", endpoint, &response); err != nil {
		return nil, err
	}

	return &SearchResult{
		Items:  response.Tracks.Items,
		Total:  response.Tracks.Total,
		Limit:  response.Tracks.Limit,
		Offset: response.Tracks.Offset,
	}, nil
}

// GetTracks retrieves multiple tracks by their IDs (up to MaxTrackIDs).
//
// The returned slice is positional over ids; unknown ids come back as nil
// entries. An empty id list short-circuits without an upstream call.
func (s *SpotifyService) GetTracks(ctx context.Context, ids []string) ([]*Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxTrackIDs {
		return nil, fmt.Errorf("%w: at most %d track ids per request", shared.ErrInvalidInput, MaxTrackIDs)
	}

	endpoint := fmt.Sprintf("/tracks?ids=%s", url.QueryEscape(strings.Join(ids, ",")))

	var response struct {
		Tracks []*Track `json:"tracks"`
	}

	if err := s.get(ctx, "tracks", endpoint, &response); err != nil {
		return nil, err
	}

	return response.Tracks, nil
}

// GetAudioFeatures retrieves audio features for multiple tracks (up to
// MaxAudioFeatureIDs), with the same positional-nil contract as GetTracks.
func (s *SpotifyService) GetAudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxAudioFeatureIDs {
		return nil, fmt.Errorf("%w: at most %d track ids per request", shared.ErrInvalidInput, MaxAudioFeatureIDs)
	}

	endpoint := fmt.Sprintf("/audio-features?ids=%s", url.QueryEscape(strings.Join(ids, ",")))

	var response struct {
		AudioFeatures []*AudioFeatures `json:"audio_features"`
	}

	if err := s.get(ctx, "audio-features", endpoint, &response); err != nil {
		return nil, err
	}

	return response.AudioFeatures, nil
}
