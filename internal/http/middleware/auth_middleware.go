package middleware

import (
	"context"
	"net/http"
	"strings"

	"studyhub/internal/apperr"
	"studyhub/internal/http/response"
	"studyhub/internal/security"
	"studyhub/internal/service"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// AuthMiddleware authenticates the bearer token. Verification includes the
// blacklist lookup so a logged-out token fails with TOKEN_REVOKED even before
// its natural expiry.
func AuthMiddleware(tokens service.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			raw := strings.TrimSpace(auth[7:])
			claims, err := tokens.VerifyAccess(r.Context(), raw)
			if err != nil {
				response.AppError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

// ActorFromRequest resolves the authenticated actor set by AuthMiddleware.
func ActorFromRequest(r *http.Request) (service.Actor, error) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return service.Actor{}, apperr.ErrUnauthorized
	}
	actor, err := service.ActorFromClaims(claims)
	if err != nil {
		return service.Actor{}, apperr.ErrInvalidToken
	}
	return actor, nil
}

// RequireAdmin gates admin-only routes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromRequest(r)
		if err != nil {
			response.AppError(w, r, err)
			return
		}
		if !actor.IsAdmin() {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
