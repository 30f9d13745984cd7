package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidSchedule = errors.New("invalid schedule entry")
	ErrInvalidRange    = errors.New("invalid date range")
)
