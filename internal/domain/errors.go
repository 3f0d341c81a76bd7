package domain

import "errors"

var (
	// ErrToken wraps failures to obtain an access token
	ErrToken = errors.New("token request failed")
	// ErrRequest wraps failures to build, send or read an API call
	ErrRequest = errors.New("api request failed")
)
