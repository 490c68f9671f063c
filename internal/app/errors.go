package service

import "errors"

// Sentinel kinds for controller errors.
var (
	ErrNoRemote   = errors.New("no remote client configured")
	ErrNotStarted = errors.New("service not started")
	ErrBusy       = errors.New("command queue full")
	ErrStopped    = errors.New("service stopped")
	ErrRefresh    = errors.New("snapshot refresh failed")
)
