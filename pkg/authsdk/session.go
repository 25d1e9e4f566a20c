package authsdk

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrSessionExpired is returned once the session's access token has expired.
var ErrSessionExpired = errors.New("authsdk: session expired, log in again")

// expiryMargin stops a session using a token that would expire in flight.
const expiryMargin = 5 * time.Second

// Session holds an access token and the roles it was issued with.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
	roles       []string

	now func() time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	s := &Session{client: client, now: time.Now}
	s.set(tok)
	return s
}

// NewSessionFromToken wraps a token obtained elsewhere. roles are taken on
// trust and only used for client-side role checks.
func (c *SDKClient) NewSessionFromToken(accessToken string, expiresIn int, roles []string) *Session {
	return newSession(c, &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Roles:       roles,
	})
}

func (s *Session) set(tok *TokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = tok.AccessToken
	s.expiresAt = s.now().Add(time.Duration(tok.ExpiresIn)*time.Second - expiryMargin)
	s.roles = slices.Clone(tok.Roles)
	slices.Sort(s.roles)
}

func (s *Session) validToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.now().Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// ExpiresAt is when the session stops using its token.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Roles returns the roles the token was issued with, sorted.
func (s *Session) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles)
}

// HasRole reports whether the token carries role.
func (s *Session) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.roles, role)
}

// HasAnyRole reports whether the token carries at least one of roles.
func (s *Session) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if s.HasRole(r) {
			return true
		}
	}
	return false
}

// checkRoles requires at least one of anyOf when role checking is enabled.
func (s *Session) checkRoles(anyOf ...string) error {
	if !s.client.CheckRoles || len(anyOf) == 0 {
		return nil
	}
	if s.HasAnyRole(anyOf...) {
		return nil
	}
	return fmt.Errorf("session lacks required role (one of: %s)", strings.Join(anyOf, ", "))
}

// Relogin replaces the session's token with a fresh one, for example after
// roles were granted since the last login.
func (s *Session) Relogin(ctx context.Context, username, password string) error {
	tok, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	s.set(tok)
	return nil
}
