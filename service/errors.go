package service

import "errors"

// The four rejection kinds surfaced to callers. Transport layers map these
// to status codes or close frames; anything else is a generic operation
// failure.
var (
	ErrUnauthenticated = errors.New("authentication failed")
	ErrUnauthorized    = errors.New("insufficient permissions")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid payload")
)
