package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/internal/auth/store"
	"github.com/rksoft/eshop/pkg/slogx"
)

type Registrar struct {
	Credentials CredentialStore
	Roles       RoleStore

	// DefaultRole is granted after the account is created. Empty means
	// domain.RoleUser.
	DefaultRole string
}

// Register creates an account and grants it the default role.
//
// The grant is best-effort: the account is already committed when it runs,
// so a failed grant is logged and the registration still succeeds.
func (r *Registrar) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	if username == "" || email == "" || password == "" {
		return domain.User{}, ErrInvalidInput
	}
	l := slogx.FromContext(ctx)

	user, err := r.Credentials.Create(ctx, username, email, password)
	if err != nil {
		var rej *store.RejectionError
		if errors.As(err, &rej) {
			l.Info("registration rejected", slog.String("username", username), slog.Any("reasons", rej.Reasons))
			return domain.User{}, &CredentialStoreError{Reasons: rej.Reasons}
		}
		return domain.User{}, storeErr(err)
	}

	role := r.DefaultRole
	if role == "" {
		role = domain.RoleUser
	}
	if err := r.Roles.Assign(ctx, user, role); err != nil {
		l.Error("default role assignment failed",
			slog.String("user_id", user.ID),
			slog.String("role", role),
			slog.Any("err", err),
		)
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("username", username))
	return user, nil
}
