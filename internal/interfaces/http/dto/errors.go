package dto

import (
	"errors"
	"net/http"

	"github.com/vesi/backend/internal/domain/connect"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Connect flow error codes
const (
	// ErrCodeUnknownProvider is used when the provider code is not recognized
	ErrCodeUnknownProvider = "ERR_UNKNOWN_PROVIDER"
	// ErrCodeNotConfigured is used when the provider has no client credentials
	ErrCodeNotConfigured = "ERR_NOT_CONFIGURED"
	// ErrCodeMissingParameter is used when a callback parameter is absent
	ErrCodeMissingParameter = "ERR_MISSING_PARAMETER"
	// ErrCodeStateMismatch is used when the callback state nonce does not match
	ErrCodeStateMismatch = "ERR_STATE_MISMATCH"
	// ErrCodeTokenExchangeFailed is used when the code exchange is rejected upstream
	ErrCodeTokenExchangeFailed = "ERR_TOKEN_EXCHANGE_FAILED"
	// ErrCodeNotConnected is used when no credential exists for the provider
	ErrCodeNotConnected = "ERR_NOT_CONNECTED"
	// ErrCodeReauthorizationRequired is used when the credential was revoked or
	// could not be refreshed
	ErrCodeReauthorizationRequired = "ERR_REAUTHORIZATION_REQUIRED"
	// ErrCodeUpstream is used when a provider API returned a failure status
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeNetworkFailure is used when a provider could not be reached
	ErrCodeNetworkFailure = "ERR_NETWORK_FAILURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:    http.StatusInternalServerError,
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	ErrCodeUnknownProvider:         http.StatusNotFound,
	ErrCodeNotConfigured:           http.StatusConflict,
	ErrCodeMissingParameter:        http.StatusBadRequest,
	ErrCodeStateMismatch:           http.StatusBadRequest,
	ErrCodeTokenExchangeFailed:     http.StatusBadGateway,
	ErrCodeNotConnected:            http.StatusConflict,
	ErrCodeReauthorizationRequired: http.StatusUnauthorized,
	ErrCodeUpstream:                http.StatusBadGateway,
	ErrCodeNetworkFailure:          http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CodeForError maps a domain error to its API error code
func CodeForError(err error) string {
	switch {
	case errors.Is(err, connect.ErrUnknownProvider):
		return ErrCodeUnknownProvider
	case errors.Is(err, connect.ErrNotConfigured):
		return ErrCodeNotConfigured
	case errors.Is(err, connect.ErrMissingParameter):
		return ErrCodeMissingParameter
	case errors.Is(err, connect.ErrStateMismatch):
		return ErrCodeStateMismatch
	case errors.Is(err, connect.ErrTokenExchangeFailed):
		return ErrCodeTokenExchangeFailed
	case errors.Is(err, connect.ErrNotConnected):
		return ErrCodeNotConnected
	case errors.Is(err, connect.ErrReauthorizationRequired),
		errors.Is(err, connect.ErrRefreshFailed):
		return ErrCodeReauthorizationRequired
	case errors.Is(err, connect.ErrNetworkFailure):
		return ErrCodeNetworkFailure
	default:
		if _, ok := connect.IsUpstreamError(err); ok {
			return ErrCodeUpstream
		}
		return ErrCodeInternal
	}
}
