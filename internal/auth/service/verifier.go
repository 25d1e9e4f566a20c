package service

import (
	"time"

	"github.com/rksoft/eshop/pkg/jwtx"
)

// TokenVerifier is the authorization boundary for protected requests.
// Audience is deliberately not checked; only signature, expiry and issuer
// are. The role-in-set decision on the returned claims is made by
// httpx.RequireAnyRole.
type TokenVerifier struct {
	verifier jwtx.Verifier
}

// NewTokenVerifier verifies HS256 tokens signed with key and issued by
// cfg.Issuer. now may be nil.
func NewTokenVerifier(key []byte, cfg TokenConfig, now func() time.Time) (*TokenVerifier, error) {
	v, err := jwtx.NewVerifierHS256(key, jwtx.VerifyOptions{Issuer: cfg.Issuer, Now: now})
	if err != nil {
		return nil, err
	}
	return &TokenVerifier{verifier: v}, nil
}

// Verify returns the token's claims, or one of jwtx.ErrInvalidSig,
// jwtx.ErrExpired or jwtx.ErrIssuer.
func (v *TokenVerifier) Verify(token string) (jwtx.Claims, error) {
	return v.verifier.Verify(token)
}
