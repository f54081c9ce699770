package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrAccountLocked     = errors.New("account locked")
	ErrPasswordMismatch  = errors.New("password does not match")

	// Role related errors
	ErrRoleNotFound = errors.New("role not found")

	// Endpoint policy related errors
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrEndpointConflict = errors.New("endpoint already registered for route and verb")

	// Token related errors
	ErrTokenExpired    = errors.New("token expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrRefreshMismatch = errors.New("refresh token mismatch")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
