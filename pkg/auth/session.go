package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/crypt"
)

// CookieName is the cookie that carries the signed session token.
const CookieName = "token"

const revokedPrefix = "auth:revoked:"

// Sessions moves tokens in and out of signed cookies and tracks logouts.
type Sessions struct {
	Tokens  *Signer
	Cookies *crypt.Signer
	Revoked cache.Store
	Secure  bool
}

// Attach issues a token for p and sets it as an httpOnly signed cookie.
func (s *Sessions) Attach(w http.ResponseWriter, p Principal) error {
	token, claims, err := s.Tokens.GenerateToken(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Cookies.Sign(token),
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		MaxAge:   int(s.Tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear overwrites the cookie with an already expired placeholder.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "logout",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
	})
}

// Resolve reads and verifies the session on r. A revoked token is treated
// the same as an invalid one.
func (s *Sessions) Resolve(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrInvalidToken
	}
	raw, err := s.Cookies.Unsign(c.Value)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, err := s.Tokens.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	if s.Revoked != nil && claims.ID != "" {
		revoked, err := s.Revoked.Exists(r.Context(), revokedPrefix+claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// Revoke remembers the token id until the token would have expired anyway.
func (s *Sessions) Revoke(ctx context.Context, claims *Claims) error {
	if s.Revoked == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.Revoked.Set(ctx, revokedPrefix+claims.ID, []byte("1"), ttl)
}
