package shared

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")

	// Input validation errors. Requests that fail validation never reach
	// the upstream API.
	ErrInvalidInput = errors.New("invalid input")
)

// AuthError reports a failed client-credentials token exchange.
//
// A failed exchange never overwrites the cached credential, so the caller's
// next request retries the exchange from scratch.
type AuthError struct {
	Status int    // HTTP status from the token endpoint, 0 for transport or parse failures
	Body   string // response body text, empty for transport failures
	Err    error  // underlying transport or parse error, if any
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("token exchange failed: status %d: %s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError reports a failed catalog or audio-features call: a non-2xx
// status, a transport failure, or a malformed response body.
type UpstreamError struct {
	Op     string // upstream operation, e.g. "search", "tracks", "audio-features"
	Status int    // HTTP status, 0 for transport or parse failures
	Body   string // response body text for status failures
	Err    error  // underlying transport or parse error, if any
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spotify %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("spotify %s failed: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsGatewayError reports whether err originated upstream of this process,
// i.e. should map to a bad-gateway style response at the front-ends.
func IsGatewayError(err error) bool {
	var ae *AuthError
	var ue *UpstreamError
	return errors.As(err, &ae) || errors.As(err, &ue)
}
