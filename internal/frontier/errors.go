// Package frontier implements the OAuth2/PKCE login flow against the
// Frontier authorization server and authenticated access to the companion
// API (cAPI).
package frontier

import "errors"

// Error taxonomy for the login flow and the resource client. Transport
// failures (DNS, TLS, timeouts) are not mapped and pass through unchanged.
var (
	// ErrBadRequest indicates malformed local input, such as an
	// unparseable callback URL.
	ErrBadRequest = errors.New("frontier: bad request")

	// ErrProtocolViolation indicates a state mismatch or missing callback
	// parameters during the authorization-code exchange. This is a client
	// bug or a CSRF/tampering indicator, not a network error.
	ErrProtocolViolation = errors.New("frontier: protocol violation")

	// ErrAuthenticationRequired indicates there is no access token, or the
	// server rejected the one we have. It always propagates to the caller
	// and should trigger a re-login prompt.
	ErrAuthenticationRequired = errors.New("frontier: authentication required")

	// ErrResourceUnavailable maps HTTP 404.
	ErrResourceUnavailable = errors.New("frontier: resource unavailable")

	// ErrNotFound maps HTTP 204: the resource key exists but has no
	// content. The journal retriever relies on this to mean "day has no
	// journal", distinct from 404.
	ErrNotFound = errors.New("frontier: no content")

	// ErrDecode indicates a response body that does not match the expected
	// schema.
	ErrDecode = errors.New("frontier: decode error")

	// ErrUnhandledStatus indicates an HTTP status outside the mapped set.
	ErrUnhandledStatus = errors.New("frontier: unhandled status")
)
