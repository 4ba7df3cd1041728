package domain

import "errors"

var (
	// ErrManagerNotRunning indicates an operation was sent before the manager loop started.
	ErrManagerNotRunning = errors.New("fasting manager is not running")

	// ErrManagerStopped indicates the manager loop has exited.
	ErrManagerStopped = errors.New("fasting manager stopped")

	// ErrClockRequired is returned when a component is built without a time source.
	ErrClockRequired = errors.New("clock is required")

	// ErrInvalidEvent indicates an event carried the wrong payload.
	ErrInvalidEvent = errors.New("invalid event")
)
