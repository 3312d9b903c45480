package app

import "errors"

// Recoverable per-connection errors. None of these alter shared state
// and none are fatal to the coordinator; they are reported to the
// offending connection only.
var (
	ErrNotAuthenticated     = errors.New("connection not authenticated")
	ErrNotInRoom            = errors.New("identity not in room")
	ErrAlreadyAuthenticated = errors.New("connection already bound to another identity")
	ErrUnknownConnection    = errors.New("unknown connection")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTarget        = errors.New("invalid reaction target")
	ErrStorage              = errors.New("comment storage failed")
)
