package auth

import "errors"

var (
	// ErrUnauthorized is returned for every token verification failure,
	// whatever the underlying cause.
	ErrUnauthorized = errors.New("invalid authentication token")

	// ErrAdminNotConfigured is returned by admin operations when no admin
	// credentials were supplied.
	ErrAdminNotConfigured = errors.New("keycloak admin not configured")
)
