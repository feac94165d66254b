// Package repository implements typed access to the relational store.
// Sentinel errors defined here let handlers map storage failures to
// the right HTTP responses without string matching.
package repository

import "errors"

// ErrEmailTaken is returned when an insert or update collides with the
// unique email constraint. Handlers translate it to a 400 response.
var ErrEmailTaken = errors.New("email already taken")

// ErrUsernameTaken is the username counterpart of ErrEmailTaken.
var ErrUsernameTaken = errors.New("username already taken")
