package resend

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSendFailed is returned when the email could not be delivered to the API
	ErrSendFailed = errors.New("email send failed")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the API key is invalid
	ErrUnauthorized = errors.New("unauthorized: invalid API key")

	// ErrRateLimited is returned when the API rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
