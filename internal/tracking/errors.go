package tracking

import "errors"

// Error taxonomy of the core. Anything not listed here is an internal
// failure; the boundary maps it to a 500 without detail.
var (
	// ErrUnauthorized: missing, malformed or rejected credentials.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrInvalidRange: a history query with start after end.
	ErrInvalidRange = errors.New("start time must be before end time")
	// ErrUnknownSurveyor: a directory lookup found no profile.
	ErrUnknownSurveyor = errors.New("surveyor not found")
)
