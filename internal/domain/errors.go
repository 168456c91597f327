package domain

import "errors"

// Failure kinds shared by the health pipeline. An empty result is not an
// error: aggregators report it with an explicit Empty flag instead.
var (
	ErrUnauthorized    = errors.New("health data access not authorized")
	ErrDataUnavailable = errors.New("health data unavailable")
	ErrTimeout         = errors.New("health data query timed out")
	ErrEmptySeries     = errors.New("empty series")
	ErrInvalidRate     = errors.New("invalid heart rate for recovery estimate")
)
