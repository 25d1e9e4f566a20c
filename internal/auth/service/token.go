package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/pkg/jwtx"
	"github.com/rksoft/eshop/pkg/slogx"
)

// TokenConfig is fixed at startup and shared by the issuing and verifying
// sides.
type TokenConfig struct {
	Issuer   string
	Audience string
	Validity time.Duration
}

type Authenticator struct {
	Credentials CredentialStore
	Roles       RoleStore
	Signer      jwtx.Signer
	Config      TokenConfig

	// Now defaults to time.Now.
	Now func() time.Time
}

// Login checks username and password and issues an access token carrying
// the roles the user holds right now. Unknown users and wrong passwords
// both fail with ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (domain.AccessToken, error) {
	if username == "" || password == "" {
		return domain.AccessToken{}, ErrInvalidInput
	}
	l := slogx.FromContext(ctx)

	user, found, err := a.Credentials.FindByUsername(ctx, username)
	if err != nil {
		return domain.AccessToken{}, storeErr(err)
	}
	if !found {
		// Burn a hash verification so the miss is not observable by timing.
		a.Credentials.VerifyPassword(domain.User{}, password)
		l.Info("login failed", slog.String("username", username), slog.String("reason", "unknown_user"))
		return domain.AccessToken{}, ErrInvalidCredentials
	}
	if !a.Credentials.VerifyPassword(user, password) {
		l.Info("login failed", slog.String("username", username), slog.String("reason", "bad_password"))
		return domain.AccessToken{}, ErrInvalidCredentials
	}

	roles, err := a.Roles.RolesOf(ctx, user)
	if err != nil {
		return domain.AccessToken{}, storeErr(err)
	}

	now := a.now()
	claims := jwtx.NewAccessClaims(user.Username, roles, a.Config.Issuer, a.Config.Audience, a.Config.Validity, now)
	signed, err := a.Signer.Sign(claims)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}

	l.Info("login succeeded", slog.String("user_id", user.ID), slog.Any("roles", claims.Roles))
	return domain.AccessToken{
		Token:     signed,
		TokenType: "Bearer",
		Subject:   user.Username,
		Roles:     claims.Roles,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (a *Authenticator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
