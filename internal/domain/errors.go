package domain

import "errors"

// Sentinel errors for backend operations
var (
	// ErrServerOffline indicates the catalog backend is unreachable
	ErrServerOffline = errors.New("catalog server is unreachable")

	// ErrRequestFailed indicates the backend answered with a non-2xx status
	ErrRequestFailed = errors.New("catalog request failed")

	// ErrDecode indicates a response body could not be parsed
	ErrDecode = errors.New("malformed catalog response")

	// ErrGenreNotFound indicates a genre name or ID did not match any genre
	ErrGenreNotFound = errors.New("genre not found")
)
