package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing Last.fm API key")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrMalformedResponse  = fmt.Errorf("malformed API response")
	ErrProviderError      = fmt.Errorf("provider returned an error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Storage errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrAlreadyExists = fmt.Errorf("already exists")
	ErrTxDone        = fmt.Errorf("transaction already finished")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
