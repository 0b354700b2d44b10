// Package common contains shared sentinel errors used across
// Messagely components.
package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound          = errors.New("not found")
	ErrorDuplicateUsername = errors.New("username already taken")

	// service specific errors
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorForbidden       = errors.New("forbidden")
	ErrorInvalidInput    = errors.New("invalid input")

	ErrInvalidToken = errors.New("invalid token")
)
