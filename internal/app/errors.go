package app

import "errors"

// Sentinel kinds for event intake. Malformed events and backpressure are
// distinguishable so the HTTP surface can answer them differently.
var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrBackpressure   = errors.New("event queue full")
	ErrNotStarted     = errors.New("service not started")
)
