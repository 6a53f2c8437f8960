package connect

import (
	"errors"
	"fmt"
)

var (
	// Authorization flow errors
	ErrUnknownProvider     = errors.New("connect: unknown provider")
	ErrNotConfigured       = errors.New("connect: provider not configured")
	ErrMissingParameter    = errors.New("connect: missing required parameter")
	ErrStateMismatch       = errors.New("connect: authorization state mismatch")
	ErrTokenExchangeFailed = errors.New("connect: token exchange failed")

	// Gateway errors
	ErrNotConnected            = errors.New("connect: provider not connected")
	ErrRefreshFailed           = errors.New("connect: token refresh failed")
	ErrReauthorizationRequired = errors.New("connect: reauthorization required")
	ErrNetworkFailure          = errors.New("connect: provider unreachable")
)

// UpstreamError indicates a non-2xx response from a provider API that is not
// an authorization failure
type UpstreamError struct {
	Status int
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("connect: upstream error (status %d)", e.Status)
}

// NewUpstreamError creates an UpstreamError for the given HTTP status
func NewUpstreamError(status int) *UpstreamError {
	return &UpstreamError{Status: status}
}

// IsUpstreamError reports whether err wraps an UpstreamError and returns it
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
