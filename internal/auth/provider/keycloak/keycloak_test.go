package keycloak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"identity-service/internal/auth"
	"identity-service/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userinfoPath = "/realms/test/protocol/openid-connect/userinfo"

func newUserinfoServer(t *testing.T, payload map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != userinfoPath {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), Config{Realm: "test"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{URL: "http://localhost:8080"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{URL: "not a url", Realm: "test"})
	assert.Error(t, err)
}

func TestNew_AdminEnabledOnlyWithBothCredentials(t *testing.T) {
	p, err := New(context.Background(), Config{URL: "http://localhost:8080/", Realm: "test", AdminUser: "admin"})
	require.NoError(t, err)
	assert.Nil(t, p.admin)

	p, err = New(context.Background(), Config{
		URL:           "http://localhost:8080/",
		Realm:         "test",
		AdminUser:     "admin",
		AdminPassword: "secret",
	})
	require.NoError(t, err)
	assert.NotNil(t, p.admin)
	assert.Equal(t, "keycloak", p.Name())
}

func TestVerifyToken_ReturnsPayloadUnchanged(t *testing.T) {
	payload := map[string]any{
		"sub":                "8f2c",
		"email":              "alice@example.com",
		"email_verified":     true,
		"preferred_username": "alice",
		"realm_access": map[string]any{
			"roles": []any{"admin", "user"},
		},
	}
	srv := newUserinfoServer(t, payload)

	p := newProvider(context.Background(), srv.URL, Config{Realm: "test"}, nil)

	info, err := p.VerifyToken(context.Background(), "good-token")
	require.NoError(t, err)

	assert.Equal(t, auth.UserInfo(payload), info)
	assert.Equal(t, "8f2c", info.Subject())
}

func TestVerifyToken_FailuresAreUnauthorized(t *testing.T) {
	srv := newUserinfoServer(t, map[string]any{"sub": "8f2c"})

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name    string
		baseURL string
		token   string
		outcome string
	}{
		{name: "rejected token", baseURL: srv.URL, token: "expired-token", outcome: metrics.OutcomeRejected},
		{name: "empty token", baseURL: srv.URL, token: "  ", outcome: metrics.OutcomeRejected},
		{name: "provider unreachable", baseURL: closedURL, token: "good-token", outcome: metrics.OutcomeUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			p := newProvider(context.Background(), tt.baseURL, Config{Realm: "test"}, nil)
			p.metrics = m

			info, err := p.VerifyToken(context.Background(), tt.token)

			assert.Nil(t, info)
			assert.Equal(t, auth.ErrUnauthorized, err)
			assert.Equal(t, 1.0, testutil.ToFloat64(
				m.IdPRequestsTotal.WithLabelValues("keycloak", "verify_token", tt.outcome),
			))
		})
	}
}
