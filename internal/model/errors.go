package model

import "errors"

var (
	ErrInvalidTimeRange        = errors.New("invalid time range: start must be before end")
	ErrNegativeCapacity        = errors.New("capacity values must not be negative")
	ErrCapacityExceeded        = errors.New("current occupancy exceeds capacity")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrUnknownArea             = errors.New("unknown area")
	ErrUnknownEventType        = errors.New("unknown event type")
	ErrUnknownDifficulty       = errors.New("unknown difficulty")
	ErrMissingTitle            = errors.New("event title is required")
	ErrOrphanDanceShow         = errors.New("dance show must start inside a main-stage event")
)
