package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrUnknownItem = errors.New("item is not processing")
)
