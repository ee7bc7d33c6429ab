package domain

import "errors"

// ErrNotFound indicates that no task exists with the requested id.
var ErrNotFound = errors.New("task not found")

// ValidationError reports invalid client-supplied input. Handlers map it to
// a client error response before any mutating store call runs.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
