package auth

import "errors"

// Error taxonomy of the auth core. The HTTP layer maps these onto status
// codes and machine-readable error codes; internal causes are never echoed
// to clients.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so callers cannot tell which one occurred.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrMissingCredentials   = errors.New("no authorization header provided")
	ErrMalformedCredentials = errors.New("invalid authorization header format")

	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("invalid token")

	// ErrWrongTokenKind rejects a refresh token on resource routes and an
	// access token on the refresh route.
	ErrWrongTokenKind = errors.New("invalid token type")

	// ErrInvalidRefreshToken is the umbrella the refresh endpoint surfaces
	// for any verification failure of the presented refresh token.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrUnauthorized is the umbrella surfaced for any access-token
	// verification failure on resource routes.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSecret is a fatal startup-class condition: the process must not
	// serve authenticated routes without a signing secret.
	ErrNoSecret = errors.New("signing secret is not configured")
)
