package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is the only error ValidateToken returns. Missing, malformed,
// expired and badly signed tokens are indistinguishable to callers.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims holds the typed JWT payload.
type Claims struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	UserRole Role   `json:"userRole"`
	jwt.RegisteredClaims
}

// Principal returns the identity carried by the claims.
func (c *Claims) Principal() Principal {
	return Principal{UserID: c.UserID, Name: c.UserName, Role: c.UserRole}
}

// Signer issues and verifies session tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer using HS256 with the given secret and lifetime.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// DefaultSigner reads JWT_SECRET and JWT_TTL_HOURS from config.
func DefaultSigner() *Signer {
	return NewSigner(config.JWTSecret(), config.TokenTTL())
}

// TTL is the validity window of issued tokens.
func (s *Signer) TTL() time.Duration { return s.ttl }

// GenerateToken signs a token embedding p, valid for the signer's TTL.
func (s *Signer) GenerateToken(p Principal) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		UserID:   p.UserID,
		UserName: p.Name,
		UserRole: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// ValidateToken parses and validates a token string.
func (s *Signer) ValidateToken(t string) (*Claims, error) {
	if t == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || !claims.UserRole.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
