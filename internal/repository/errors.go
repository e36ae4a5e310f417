// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current account is not
// authorized to perform an operation on a resource owned by someone
// else. Plain "row not found" conditions are reported as sql.ErrNoRows
// so callers can use errors.Is uniformly.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when registering an account whose email
// address is already taken. Handlers should translate this into an
// HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
