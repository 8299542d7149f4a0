package game

import (
	"errors"

	"github.com/pthm-cable/brainmaze/systems"
)

// Registration and stepping errors.
var (
	ErrPlayerExists    = errors.New("game: player already registered")
	ErrHomingExists    = errors.New("game: homing actor already registered")
	ErrInvalidExtents  = errors.New("game: half extents must be positive")
	ErrInvalidRadius   = errors.New("game: radius must be positive")
	ErrTooFewWaypoints = systems.ErrTooFewWaypoints
	ErrMissingProxy    = errors.New("game: visible actor needs a render proxy")
	ErrMissingView     = errors.New("game: player needs a view")
	ErrNoPlayer        = errors.New("game: no player registered")
	ErrInvalidDelta    = errors.New("game: step delta must be positive")
)
