// Package middleware provides the HTTP middleware chain of the API.
package middleware

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// Authenticate resolves the session cookie and stores the principal in the
// request context. Requests without a valid session get a 401.
func Authenticate(s *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.Resolve(r)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					logger.WithCtx(r.Context()).Error("session lookup failed", "error", err)
				}
				response.Error(w, http.StatusUnauthorized, "Authentication Invalid")
				return
			}
			ctx := auth.WithPrincipal(r.Context(), claims.Principal())
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
