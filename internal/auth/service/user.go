package service

import (
	"context"

	"github.com/rksoft/eshop/internal/auth/domain"
)

// Profile is what a signed-in user can see about themselves.
type Profile struct {
	User  domain.User
	Roles []string // currently held, which may differ from the token's
}

type UserService struct {
	Credentials CredentialStore
	Roles       RoleStore
}

// GetProfile fetches a user and the roles they hold now.
func (s *UserService) GetProfile(ctx context.Context, username string) (Profile, error) {
	user, found, err := s.Credentials.FindByUsername(ctx, username)
	if err != nil {
		return Profile{}, storeErr(err)
	}
	if !found {
		return Profile{}, ErrUserNotFound
	}

	roles, err := s.Roles.RolesOf(ctx, user)
	if err != nil {
		return Profile{}, storeErr(err)
	}
	return Profile{User: user, Roles: roles}, nil
}
