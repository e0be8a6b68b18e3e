package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vic3r/spotify-search/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultTokenSafetyMargin is subtracted from the upstream TTL when computing
// a cached credential's expiry, so no caller is ever handed a token that
// expires mid-request.
const DefaultTokenSafetyMargin = 60 * time.Second

// accessToken returns a valid bearer token for upstream calls, exchanging
// client credentials when no unexpired token is cached.
//
// The fast path takes only the read lock; the write lock covers the in-memory
// swap, never the network call, so a slow token endpoint does not block
// readers holding a still-valid token. Concurrent callers that all miss may
// each run an exchange; the endpoint is idempotent and the last writer wins.
func (s *SpotifyService) accessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if t := s.token; t != nil && t.Expiry.After(time.Now()) {
		s.mu.RUnlock()
		return t.AccessToken, nil
	}
	s.mu.RUnlock()

	token, err := s.exchangeToken(ctx)
	if err != nil {
		// cached state stays as-is, the next caller retries
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return token.AccessToken, nil
}

// exchangeToken performs the OAuth client-credentials exchange against the
// token endpoint.
func (s *SpotifyService) exchangeToken(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &shared.AuthError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &shared.AuthError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &shared.AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &shared.AuthError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	// Upstream TTLs shorter than the margin clamp to an already-due expiry
	// rather than one in the past.
	ttl := time.Duration(payload.ExpiresIn)*time.Second - s.safetyMargin
	if ttl < 0 {
		ttl = 0
	}

	return &oauth2.Token{
		AccessToken: payload.AccessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(ttl),
	}, nil
}
