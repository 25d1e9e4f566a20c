package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/pkg/cryptox"
	"github.com/rksoft/eshop/pkg/idx"
)

// RejectionError lists why the credential store refused to create an account.
// Reasons are meant to be shown to the caller verbatim.
type RejectionError struct {
	Reasons []string
}

func (e *RejectionError) Error() string {
	return "store: credentials rejected: " + strings.Join(e.Reasons, " ")
}

// CredentialAdapter exposes user accounts of a Store as a credential store:
// lookup by username, password verification and account creation under a
// password policy.
type CredentialAdapter struct {
	store  Store
	hasher *cryptox.Hasher
	policy PasswordPolicy

	// dummyHash is verified against when the account has no hash, so a
	// failed lookup costs the same as a wrong password.
	dummyHash string
}

// NewCredentialAdapter returns an adapter over st hashing with hasher.
func NewCredentialAdapter(st Store, hasher *cryptox.Hasher, policy PasswordPolicy) (*CredentialAdapter, error) {
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("store: prepare dummy hash: %w", err)
	}
	return &CredentialAdapter{store: st, hasher: hasher, policy: policy, dummyHash: dummy}, nil
}

// FindByUsername returns the user and true, or false when no such user exists.
func (a *CredentialAdapter) FindByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	u, err := a.store.Users().GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		return domain.User{}, false, nil
	case err != nil:
		return domain.User{}, false, err
	}
	return u, true, nil
}

// VerifyPassword reports whether password matches the user's stored hash.
func (a *CredentialAdapter) VerifyPassword(user domain.User, password string) bool {
	if user.PasswordHash == "" {
		_ = a.hasher.Verify(password, a.dummyHash)
		return false
	}
	return a.hasher.Verify(password, user.PasswordHash) == nil
}

// Create validates and stores a new account. Policy violations and a taken
// username come back as *RejectionError.
func (a *CredentialAdapter) Create(ctx context.Context, username, email, password string) (domain.User, error) {
	reasons := checkUsername(username)
	reasons = append(reasons, a.policy.Check(password)...)

	_, taken, err := a.FindByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if taken {
		reasons = append(reasons, usernameTaken(username))
	}
	if len(reasons) > 0 {
		return domain.User{}, &RejectionError{Reasons: reasons}
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("store: hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = a.store.Users().CreateUser(ctx, u)
	switch {
	case errors.Is(err, ErrAlreadyExists):
		// Lost a race with a concurrent registration of the same name.
		return domain.User{}, &RejectionError{Reasons: []string{usernameTaken(username)}}
	case err != nil:
		return domain.User{}, err
	}
	return u, nil
}

func usernameTaken(username string) string {
	return fmt.Sprintf("Username '%s' is already taken.", username)
}
