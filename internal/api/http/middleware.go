package http

import (
	"context"
	"net/http"
	"strings"

	"membership-backend/internal/logger"
	"membership-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "member-claims"

// Authenticate requires a valid bearer access token and stores its claims on the request context.
func Authenticate(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeErrorMessage(w, http.StatusUnauthorized, "authorization token is not provided")
				return
			}
			claims, err := tm.ValidateToken(token)
			if err != nil {
				logger.Warn("Rejected bearer token", "path", r.URL.Path, "error", err)
				writeErrorMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// ClaimsFromContext returns the claims set by Authenticate.
func ClaimsFromContext(ctx context.Context) (*security.MemberClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*security.MemberClaims)
	return claims, ok
}
