package web

import "errors"

// Error definitions for the web package.
var (
	// ErrNoApp indicates the server was built without a controller.
	ErrNoApp = errors.New("web: no app configured")

	// ErrNoRenderer indicates the server was built without a page renderer.
	ErrNoRenderer = errors.New("web: no renderer configured")

	// ErrBadCSRFKey indicates the CSRF key is missing or not 32 bytes.
	ErrBadCSRFKey = errors.New("web: invalid csrf key")
)
