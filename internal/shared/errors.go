package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNotConfirmed     = fmt.Errorf("account not confirmed")
	ErrNoPendingSignup  = fmt.Errorf("no pending signup")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// ErrTokenExpired is a refinement of ErrNotAuthenticated so callers
	// can still catch the broader condition with errors.Is.
	ErrTokenExpired = fmt.Errorf("access token expired: %w", ErrNotAuthenticated)

	// ErrPasswordChallenge wraps ErrNotImplemented: the admin-forced
	// password reset flow has no client support.
	ErrPasswordChallenge = fmt.Errorf("new password required: %w", ErrNotImplemented)

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrFileNotFound       = fmt.Errorf("file not found")

	// Upload errors
	ErrUnsupportedType = fmt.Errorf("unsupported file type")
	ErrFileTooLarge    = fmt.Errorf("file exceeds size limit")
	ErrEmptyFile       = fmt.Errorf("file is empty")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
