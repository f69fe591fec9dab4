package keycloak

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"identity-service/internal/auth"
	"identity-service/internal/logger"
	"identity-service/internal/metrics"

	"github.com/Nerzal/gocloak/v13"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "keycloak"

// Config identifies the realm and, optionally, the admin account used for
// user management.
type Config struct {
	URL      string // server root, e.g. http://localhost:8080/
	Realm    string
	ClientID string // logged only; userinfo needs no client credentials

	AdminUser     string
	AdminPassword string
}

// Provider forwards token verification and user administration to Keycloak.
// It holds no state besides the cached admin token and is safe for
// concurrent use.
type Provider struct {
	realm    string
	userinfo *oidc.Provider
	admin    *adminClient
	metrics  *metrics.Metrics
}

type Option func(*Provider)

// WithMetrics records every operation on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}

// New builds a provider from explicit configuration. No request is made;
// the realm's endpoints are derived from URL and Realm.
func New(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	if cfg.URL == "" || cfg.Realm == "" {
		return nil, errors.New("keycloak config missing url or realm")
	}

	baseURL := strings.TrimRight(cfg.URL, "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.New("keycloak url is not an absolute url")
	}

	var api adminAPI
	if cfg.AdminUser != "" && cfg.AdminPassword != "" {
		api = gocloak.NewClient(baseURL)
	}

	p := newProvider(ctx, baseURL, cfg, api)
	for _, opt := range opts {
		opt(p)
	}

	logger.Info("keycloak provider configured", map[string]any{
		"realm":         cfg.Realm,
		"client_id":     cfg.ClientID,
		"admin_enabled": p.admin != nil,
	})

	return p, nil
}

func newProvider(ctx context.Context, baseURL string, cfg Config, api adminAPI) *Provider {
	issuer := baseURL + "/realms/" + cfg.Realm
	endpoints := issuer + "/protocol/openid-connect"

	oidcConfig := &oidc.ProviderConfig{
		IssuerURL:   issuer,
		AuthURL:     endpoints + "/auth",
		TokenURL:    endpoints + "/token",
		UserInfoURL: endpoints + "/userinfo",
		JWKSURL:     endpoints + "/certs",
		Algorithms:  []string{oidc.RS256},
	}

	p := &Provider{
		realm:    cfg.Realm,
		userinfo: oidcConfig.NewProvider(ctx),
	}

	if api != nil {
		p.admin = newAdminClient(api, cfg.Realm, cfg.AdminUser, cfg.AdminPassword)
	}

	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// VerifyToken exchanges the bearer token for the realm's userinfo claims.
// Every failure collapses into auth.ErrUnauthorized; the cause is only
// logged.
func (p *Provider) VerifyToken(ctx context.Context, token string) (auth.UserInfo, error) {
	start := time.Now()

	if strings.TrimSpace(token) == "" {
		p.observe("verify_token", metrics.OutcomeRejected, start)
		return nil, auth.ErrUnauthorized
	}

	info, err := p.userinfo.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	if err != nil {
		outcome := metrics.OutcomeRejected
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			outcome = metrics.OutcomeUnreachable
		}
		p.observe("verify_token", outcome, start)

		logger.Warn("keycloak token verification failed", map[string]any{
			"realm":   p.realm,
			"outcome": outcome,
			"error":   err.Error(),
		})
		return nil, auth.ErrUnauthorized
	}

	var claims auth.UserInfo
	if err := info.Claims(&claims); err != nil {
		p.observe("verify_token", metrics.OutcomeRejected, start)
		logger.Warn("keycloak userinfo claims parse failed", map[string]any{
			"error": err.Error(),
		})
		return nil, auth.ErrUnauthorized
	}

	p.observe("verify_token", metrics.OutcomeSuccess, start)
	return claims, nil
}

func (p *Provider) observe(operation, outcome string, start time.Time) {
	p.metrics.ObserveIdP(providerName, operation, outcome, time.Since(start))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, auth.ErrAdminNotConfigured):
		return metrics.OutcomeNotConfigured
	default:
		return metrics.OutcomeError
	}
}
