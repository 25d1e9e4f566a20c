package service

import (
	"context"

	"github.com/rksoft/eshop/internal/auth/domain"
)

// CredentialStore owns user accounts and their password hashes.
type CredentialStore interface {
	// FindByUsername reports false when no user has exactly this username.
	FindByUsername(ctx context.Context, username string) (domain.User, bool, error)

	// VerifyPassword must take comparable time for the zero User so that
	// unknown usernames cannot be told apart by latency.
	VerifyPassword(user domain.User, password string) bool

	// Create stores a new account. Rejections by store policy are reported
	// as *store.RejectionError.
	Create(ctx context.Context, username, email, password string) (domain.User, error)
}

// RoleStore owns role names and the user-role relation. Create must report
// a duplicate name with store.ErrAlreadyExists even when it loses a race,
// and Assign must be idempotent.
type RoleStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) error
	RolesOf(ctx context.Context, user domain.User) ([]string, error)
	Assign(ctx context.Context, user domain.User, name string) error
}
