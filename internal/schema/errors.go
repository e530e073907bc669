package schema

import "errors"

// Validation errors. They are returned before anything is written, so the
// caller can treat the whole submission as not having happened.
var (
	ErrMissingDeltas  = errors.New("missing deltas for some active players")
	ErrDuplicateDelta = errors.New("duplicate delta for player")
	ErrTooManyPlayers = errors.New("too many default players requested")
)
