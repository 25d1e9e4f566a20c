package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the minimum HMAC key length in bytes accepted for HS256.
const MinKeySize = 32

// Signer is anything that can sign access-token claims.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with a shared HMAC-SHA256 key.
type HS256Signer struct {
	key []byte
}

// NewSignerHS256 creates a signer for key. The key is copied.
func NewSignerHS256(key []byte) (*HS256Signer, error) {
	if len(key) < MinKeySize {
		return nil, fmt.Errorf("jwtx: hs256 key must be at least %d bytes, got %d", MinKeySize, len(key))
	}
	return &HS256Signer{key: append([]byte(nil), key...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign serialises c as a compact JWS.
func (s *HS256Signer) Sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token.Header["typ"] = "JWT"

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}
