// Package engine runs validation and formatting jobs on a bounded worker
// pool shared by every caller.
package engine

import "errors"

var (
	// ErrOverloaded is returned when every worker is busy and the wait
	// queue is full.
	ErrOverloaded = errors.New("engine overloaded: wait queue is full")

	// ErrQueueTimeout is returned when the caller's context ends before a
	// worker frees up.
	ErrQueueTimeout = errors.New("engine queue timeout: no worker became available")
)
