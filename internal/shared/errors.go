package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")

	// Remote store errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrHydrationFailed    = fmt.Errorf("library hydration failed")

	// Engine errors
	ErrNoSession        = fmt.Errorf("no active session")
	ErrQueueClosed      = fmt.Errorf("sync queue closed")
	ErrSongNotFound     = fmt.Errorf("song not found")
	ErrThemeNotFound    = fmt.Errorf("theme not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidRating   = fmt.Errorf("rating must be between 1 and 10")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
