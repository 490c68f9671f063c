package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrParseTemplate   = errors.New("page template parse failed")
	ErrExecuteTemplate = errors.New("page template execute failed")
)
