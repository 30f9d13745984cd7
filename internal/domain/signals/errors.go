package signals

import "errors"

// Sentinel kinds for signal configuration errors.
var (
	ErrInvalidWeights = errors.New("invalid signal weights")
)
