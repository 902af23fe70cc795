package booking

import "errors"

// Sentinel errors returned by the store. The dispatcher maps them to wire
// error codes at the protocol boundary.
var (
	// ErrNotFound means the facility or confirmation id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTime means a time range is empty, reversed, or falls outside
	// the week.
	ErrInvalidTime = errors.New("invalid time range")

	// ErrConflict means the requested range overlaps an existing booking.
	ErrConflict = errors.New("booking conflict")

	// ErrCancelled means the target booking has already been cancelled.
	ErrCancelled = errors.New("booking cancelled")
)
