package handler

import "errors"

var (
	// ErrDisallowedRedirect is returned when the requested redirect target is
	// neither a relative path nor an allow-listed host.
	ErrDisallowedRedirect = errors.New("disallowed redirect target")
)
