package domain

import "time"

// AccessToken is the result of a successful login. It is never persisted.
type AccessToken struct {
	Token     string // compact HS256 JWS
	TokenType string // always "Bearer"
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiresIn is the token lifetime measured from issuance.
func (t AccessToken) ExpiresIn() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}
