package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Provider errors, attached per slice by the fetch engine
	ErrCredentialInvalid   = fmt.Errorf("credential rejected by provider")
	ErrRateLimited         = fmt.Errorf("rate limited by provider")
	ErrProviderUnavailable = fmt.Errorf("provider unavailable")
	ErrMalformedResponse   = fmt.Errorf("malformed provider response")

	// Storage errors
	ErrQuotaExceeded  = fmt.Errorf("storage quota exceeded")
	ErrStorageCorrupt = fmt.Errorf("stored value corrupt")
	ErrNoData         = fmt.Errorf("no data available")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
