// Package rbac holds the permission rules of the API.
//
// CheckPermission is a pure decision: it returns an error and never touches
// the response. The handler that called it renders the single response.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// CheckPermission allows admins, and otherwise only the owner of the resource.
func CheckPermission(p auth.Principal, ownerID string) error {
	if p.IsAdmin() {
		return nil
	}
	if p.UserID != "" && p.UserID == ownerID {
		return nil
	}
	return apperr.Forbiddenf("Not authorized to access this resource")
}

// CheckOwner allows only the owner, with no admin bypass. Reviews and orders
// use this rule.
func CheckOwner(p auth.Principal, ownerID string, action string) error {
	if p.UserID != "" && p.UserID == ownerID {
		return nil
	}
	return apperr.Forbiddenf("You are not allowed to %s", action)
}

// HasRole returns middleware that allows access only to principals with one
// of the given roles. Requires the auth middleware to have run.
func HasRole(roles ...auth.Role) func(http.Handler) http.Handler {
	allowed := make(map[auth.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.FromContext(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			if !allowed[p.Role] {
				response.Error(w, http.StatusForbidden, "Not authorized to this route")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
