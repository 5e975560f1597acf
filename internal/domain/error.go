package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("session not found")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBusy rejects a send while another chat request is still in flight.
	// The state machine permits a single outstanding request at a time.
	ErrBusy = errors.New("chat request already in flight")
)
