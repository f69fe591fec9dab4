package keycloak

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// tokenExpiryLeeway refreshes the admin token this long before Keycloak
// would reject it.
const tokenExpiryLeeway = 10 * time.Second

// adminToken logs in with the admin password grant on first use and reuses
// the access token until it is about to expire.
type adminToken struct {
	api      adminAPI
	realm    string
	username string
	password string
	now      func() time.Time

	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

func newAdminToken(api adminAPI, realm, username, password string) *adminToken {
	return &adminToken{
		api:      api,
		realm:    realm,
		username: username,
		password: password,
		now:      time.Now,
	}
}

func (t *adminToken) get(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.value != "" && now.Before(t.expiresAt) {
		return t.value, nil
	}

	jwt, err := t.api.LoginAdmin(ctx, t.username, t.password, t.realm)
	if err != nil {
		return "", fmt.Errorf("keycloak admin login: %w", err)
	}
	if jwt == nil || jwt.AccessToken == "" {
		return "", fmt.Errorf("keycloak admin login: empty access token")
	}

	t.value = jwt.AccessToken
	t.expiresAt = now.Add(time.Duration(jwt.ExpiresIn)*time.Second - tokenExpiryLeeway)

	return t.value, nil
}
