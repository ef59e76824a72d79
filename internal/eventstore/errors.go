package eventstore

import "errors"

var (
	// ErrInvalidEvent is returned by Append for events without a build id or type.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrPayloadMismatch is returned when decoding a payload into the wrong type.
	ErrPayloadMismatch = errors.New("event payload type mismatch")
)
