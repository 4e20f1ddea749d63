// Package crypt signs and verifies cookie values with HMAC-SHA256.
//
// A signed value has the form "s:<value>.<base64url(mac)>", so a tampered
// cookie is rejected before its payload is looked at:
//
//	signed := crypt.New(secret).Sign(token)
//	token, err := crypt.New(secret).Unsign(signed)
package crypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrBadSignature is returned when a value was not signed with this key.
var ErrBadSignature = errors.New("crypt: bad signature")

const prefix = "s:"

// Signer holds the derived HMAC key.
type Signer struct {
	key []byte
}

// New derives a signing key from secret.
func New(secret string) *Signer {
	h := sha256.Sum256([]byte("cookie:" + secret))
	return &Signer{key: h[:]}
}

func (s *Signer) mac(value string) string {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

// Sign returns value with its signature appended.
func (s *Signer) Sign(value string) string {
	return prefix + value + "." + s.mac(value)
}

// Unsign verifies signed and returns the original value.
func (s *Signer) Unsign(signed string) (string, error) {
	if !strings.HasPrefix(signed, prefix) {
		return "", ErrBadSignature
	}
	body := strings.TrimPrefix(signed, prefix)
	idx := strings.LastIndexByte(body, '.')
	if idx <= 0 {
		return "", ErrBadSignature
	}
	value, sig := body[:idx], body[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(value))) {
		return "", ErrBadSignature
	}
	return value, nil
}
