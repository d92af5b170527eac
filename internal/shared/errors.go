package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthRequired = fmt.Errorf("authentication required")
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// Setlist source errors
	ErrSetlistNotFound = fmt.Errorf("no setlist with songs found")
	ErrSourceRequest   = fmt.Errorf("setlist request failed")

	// Streaming service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrCreateFailed       = fmt.Errorf("playlist creation failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
