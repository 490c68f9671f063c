package remote

import "errors"

// Sentinel kinds for remote client errors.
var (
	// ErrTransport marks network-level failures and unexpected list statuses.
	ErrTransport = errors.New("upstream transport failed")
	// ErrDecode marks response bodies that could not be parsed as JSON.
	ErrDecode = errors.New("upstream response decode failed")
)
