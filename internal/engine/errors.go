package engine

import "errors"

var (
	// ErrUnknownKind indicates a body kind the engine cannot build.
	ErrUnknownKind = errors.New("engine: unknown body kind")

	// ErrUnknownMarkMode indicates a mark mode name that does not parse.
	ErrUnknownMarkMode = errors.New("engine: unknown mark mode")
)
