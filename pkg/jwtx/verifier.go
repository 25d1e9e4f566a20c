package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	// ErrInvalidSig covers every token whose MAC cannot be validated with the
	// configured key, including malformed tokens and foreign algorithms.
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
)

// VerifyOptions captures the expectations a verifier enforces.
type VerifyOptions struct {
	// Issuer the token must carry. Compared exactly.
	Issuer string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// HS256Verifier validates tokens produced by HS256Signer.
//
// The aud claim is deliberately not enforced; tokens minted for any
// audience verify as long as signature, expiry and issuer hold.
type HS256Verifier struct {
	key    []byte
	opts   VerifyOptions
	parser *jwt.Parser
}

// NewVerifierHS256 creates a verifier for key with opts.
func NewVerifierHS256(key []byte, opts VerifyOptions) (*HS256Verifier, error) {
	if len(key) < MinKeySize {
		return nil, fmt.Errorf("jwtx: hs256 key must be at least %d bytes, got %d", MinKeySize, len(key))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &HS256Verifier{
		key:  append([]byte(nil), key...),
		opts: opts,
		// Registered claims are checked below against the injected clock.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Verify checks signature, then expiry, then issuer.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
	}

	if err := claims.ValidateExpiry(v.opts.Now()); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}

	claims.Roles = NormalizeRoles(claims.Roles)
	return claims, nil
}
