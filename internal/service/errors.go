package service

import "errors"

// Auth flow taxonomy. The three refresh failures map to the same HTTP
// status but stay distinct for diagnosability.
var (
	ErrValidation        = errors.New("invalid or missing fields")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials deliberately covers both unknown username and
	// wrong password; callers get no oracle for account existence.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	ErrInvalidToken   = errors.New("invalid or expired refresh token")
	ErrSessionRevoked = errors.New("refresh token revoked or invalid")
	ErrTokenMismatch  = errors.New("refresh token superseded")

	// ErrRefreshDisabled is configuration state, not a client error:
	// without a session store refresh is unavailable entirely.
	ErrRefreshDisabled = errors.New("refresh tokens disabled")
)
