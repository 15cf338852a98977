package viacep

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid viacep configuration")

	// ErrInvalidCEP is returned when the CEP is malformed
	ErrInvalidCEP = errors.New("invalid CEP")

	// ErrCEPNotFound is returned when the CEP does not exist
	ErrCEPNotFound = errors.New("CEP not found")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrLookupFailed is returned for unexpected upstream responses
	ErrLookupFailed = errors.New("CEP lookup failed")
)
