package common

import "errors"

var (
	// Identity errors, shared by local capability checks and store rejections.
	ErrUnauthenticated = errors.New("please sign in first")
	ErrUnauthorized    = errors.New("admin privileges required")

	// ErrValidation marks input rejected locally or by the store.
	ErrValidation = errors.New("validation failed")

	// Watchlist errors.
	ErrItemNotTracked = errors.New("film is not in your list")
	ErrNotConfirmed   = errors.New("removal was not confirmed")
	ErrInvalidStatus  = errors.New("invalid watchlist status")

	// Review errors.
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")

	// View errors.
	ErrInvalidFilter = errors.New("invalid filter")

	// Admin errors: an admin may not change their own role or delete themselves.
	ErrSelfModification = errors.New("cannot modify your own account")
)
