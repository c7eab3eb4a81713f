package contacts

import "errors"

var (
	// ErrNotFound is returned when the raw contact does not exist.
	ErrNotFound = errors.New("contact not found")

	// ErrInvalidImage is returned when photo bytes do not decode as an image.
	ErrInvalidImage = errors.New("photo is not a supported image")

	// ErrPhotoTimeout is returned when the provider did not publish a
	// processed photo within the polling budget.
	ErrPhotoTimeout = errors.New("photo processing not confirmed")
)
