package keycloak

import (
	"context"
	"fmt"
	"time"

	"identity-service/internal/auth"

	"github.com/Nerzal/gocloak/v13"
)

// usersPageSize is the page size used when listing every user.
const usersPageSize = 100

// adminAPI is the subset of *gocloak.GoCloak used for user management.
type adminAPI interface {
	LoginAdmin(ctx context.Context, username, password, realm string) (*gocloak.JWT, error)
	CreateUser(ctx context.Context, token, realm string, user gocloak.User) (string, error)
	GetUsers(ctx context.Context, token, realm string, params gocloak.GetUsersParams) ([]*gocloak.User, error)
	GetRealmRole(ctx context.Context, token, realm, roleName string) (*gocloak.Role, error)
	AddRealmRoleToUser(ctx context.Context, token, realm, userID string, roles []gocloak.Role) error
}

type adminClient struct {
	api   adminAPI
	realm string
	token *adminToken
}

func newAdminClient(api adminAPI, realm, username, password string) *adminClient {
	return &adminClient{
		api:   api,
		realm: realm,
		token: newAdminToken(api, realm, username, password),
	}
}

// CreateUser creates an enabled account with a non-temporary password
// credential and returns its id.
func (p *Provider) CreateUser(ctx context.Context, user auth.NewUser) (userID string, err error) {
	defer p.observeAdmin("create_user", time.Now(), &err)

	if p.admin == nil {
		return "", auth.ErrAdminNotConfigured
	}

	token, err := p.admin.token.get(ctx)
	if err != nil {
		return "", err
	}

	id, err := p.admin.api.CreateUser(ctx, token, p.admin.realm, gocloak.User{
		Username: gocloak.StringP(user.Username),
		Email:    gocloak.StringP(user.Email),
		Enabled:  gocloak.BoolP(true),
		Credentials: &[]gocloak.CredentialRepresentation{{
			Type:  gocloak.StringP("password"),
			Value: gocloak.StringP(user.Password),
		}},
	})
	if err != nil {
		return "", fmt.Errorf("keycloak create user: %w", err)
	}

	return id, nil
}

// GetUsers lists the realm's users. Without an explicit Max it pages
// through the whole realm.
func (p *Provider) GetUsers(ctx context.Context, query auth.UserQuery) (users []auth.User, err error) {
	defer p.observeAdmin("get_users", time.Now(), &err)

	if p.admin == nil {
		return nil, auth.ErrAdminNotConfigured
	}

	token, err := p.admin.token.get(ctx)
	if err != nil {
		return nil, err
	}

	params := gocloak.GetUsersParams{
		First: query.First,
		Max:   query.Max,
	}
	if query.Search != "" {
		params.Search = gocloak.StringP(query.Search)
	}

	if query.Max != nil {
		page, err := p.admin.api.GetUsers(ctx, token, p.admin.realm, params)
		if err != nil {
			return nil, fmt.Errorf("keycloak get users: %w", err)
		}
		return toUsers(page), nil
	}

	first := 0
	if query.First != nil {
		first = *query.First
	}

	users = []auth.User{}
	for {
		params.First = gocloak.IntP(first)
		params.Max = gocloak.IntP(usersPageSize)

		page, err := p.admin.api.GetUsers(ctx, token, p.admin.realm, params)
		if err != nil {
			return nil, fmt.Errorf("keycloak get users: %w", err)
		}

		users = append(users, toUsers(page)...)
		if len(page) < usersPageSize {
			return users, nil
		}
		first += len(page)
	}
}

// AssignRealmRole looks up roleName and grants it to userID. The two calls
// are not atomic: a failed assignment leaves nothing to roll back, and a
// failed lookup stops before any assignment is attempted.
func (p *Provider) AssignRealmRole(ctx context.Context, userID string, roleName string) (err error) {
	defer p.observeAdmin("assign_realm_role", time.Now(), &err)

	if p.admin == nil {
		return auth.ErrAdminNotConfigured
	}

	token, err := p.admin.token.get(ctx)
	if err != nil {
		return err
	}

	role, err := p.admin.api.GetRealmRole(ctx, token, p.admin.realm, roleName)
	if err != nil {
		return fmt.Errorf("keycloak get realm role %q: %w", roleName, err)
	}
	if role == nil {
		return fmt.Errorf("keycloak get realm role %q: empty response", roleName)
	}

	if err := p.admin.api.AddRealmRoleToUser(ctx, token, p.admin.realm, userID, []gocloak.Role{*role}); err != nil {
		return fmt.Errorf("keycloak assign realm role %q: %w", roleName, err)
	}

	return nil
}

func (p *Provider) observeAdmin(operation string, start time.Time, err *error) {
	p.observe(operation, outcomeOf(*err), start)
}

func toUsers(in []*gocloak.User) []auth.User {
	out := make([]auth.User, 0, len(in))
	for _, u := range in {
		if u == nil {
			continue
		}
		var created int64
		if u.CreatedTimestamp != nil {
			created = *u.CreatedTimestamp
		}
		out = append(out, auth.User{
			ID:               gocloak.PString(u.ID),
			Username:         gocloak.PString(u.Username),
			Email:            gocloak.PString(u.Email),
			FirstName:        gocloak.PString(u.FirstName),
			LastName:         gocloak.PString(u.LastName),
			Enabled:          gocloak.PBool(u.Enabled),
			EmailVerified:    gocloak.PBool(u.EmailVerified),
			CreatedTimestamp: created,
		})
	}
	return out
}
