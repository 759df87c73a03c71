// Package common defines sentinel errors and constants shared by the client
// layers. Callers should match the errors with errors.Is.
package common

import "errors"

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrInvalidToken marks an access token that cannot be parsed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired marks an access token whose exp claim has passed.
	ErrTokenExpired = errors.New("token expired")
)
