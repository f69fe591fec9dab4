package provider

import (
	"context"

	"identity-service/internal/auth"
)

// TokenVerifier resolves a bearer token into the provider's userinfo.
// Every failure must be reported as auth.ErrUnauthorized.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (auth.UserInfo, error)
}

// UserAdmin manages accounts in the provider. Implementations return
// auth.ErrAdminNotConfigured, without touching the network, when they
// hold no admin credentials.
type UserAdmin interface {
	CreateUser(ctx context.Context, user auth.NewUser) (userID string, err error)
	GetUsers(ctx context.Context, query auth.UserQuery) ([]auth.User, error)

	// AssignRealmRole looks the role up, then assigns it. Nothing is undone
	// if the second step fails.
	AssignRealmRole(ctx context.Context, userID string, roleName string) error
}

// IdentityProvider is the full surface the HTTP layer depends on.
type IdentityProvider interface {
	// Name returns the provider identifier (e.g. "keycloak").
	Name() string

	TokenVerifier
	UserAdmin
}
