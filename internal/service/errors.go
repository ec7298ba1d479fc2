package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")

	// Conflict family: the request was well-formed but the current state
	// forbids it. Callers must re-read state before retrying.
	ErrTaskClosed        = errors.New("task is closed")
	ErrDuplicateBid      = errors.New("carrier already has a bid on this task")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSameStatus        = errors.New("status unchanged")
	ErrInvalidCarrier    = errors.New("invalid carrier")
)
