package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"identity-service/internal/auth"
	"identity-service/internal/auth/provider"
)

// unexported, collision-proof context key
type userInfoContextKeyType struct{}

var userInfoKey = userInfoContextKeyType{}

// UserInfoFromContext returns the verified caller's userinfo.
func UserInfoFromContext(ctx context.Context) (auth.UserInfo, bool) {
	info, ok := ctx.Value(userInfoKey).(auth.UserInfo)
	return info, ok
}

// WithUserInfo attaches userinfo to ctx.
func WithUserInfo(ctx context.Context, info auth.UserInfo) context.Context {
	return context.WithValue(ctx, userInfoKey, info)
}

type AuthMiddleware struct {
	Verifier provider.TokenVerifier
}

func NewAuthMiddleware(verifier provider.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{Verifier: verifier}
}

// RequireAuth verifies the bearer token with the identity provider on
// every request. There is no local validation or caching.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeUnauthorized(w)
			return
		}

		info, err := a.Verifier.VerifyToken(r.Context(), token)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserInfo(r.Context(), info)))
	})
}

// BearerToken returns the last space-separated part of an Authorization
// header, so both "Bearer abc" and a bare "abc" yield "abc".
func BearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "Invalid authentication token",
	})
}
