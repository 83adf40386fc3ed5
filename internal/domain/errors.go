package domain

import "errors"

// ErrInvalidArgument marks an empty or missing required field passed to a
// repository operation. Surfaced immediately to the caller, never retried.
var ErrInvalidArgument = errors.New("invalid argument")
