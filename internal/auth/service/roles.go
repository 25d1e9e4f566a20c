package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/internal/auth/store"
	"github.com/rksoft/eshop/pkg/slogx"
)

// RoleManager grants roles to existing users. CreateRole and
// AssignExistingRole are mutually exclusive on whether the role exists:
// for any given state exactly one of them can succeed.
type RoleManager struct {
	Credentials CredentialStore
	Roles       RoleStore
}

// CreateRole creates roleName and grants it to username. If the grant fails
// the new role is left in place.
func (m *RoleManager) CreateRole(ctx context.Context, username, roleName string) error {
	user, err := m.lookup(ctx, username, roleName)
	if err != nil {
		return err
	}

	exists, err := m.Roles.Exists(ctx, roleName)
	if err != nil {
		return storeErr(err)
	}
	if exists {
		return ErrRoleAlreadyExists
	}

	// A concurrent CreateRole may pass the check above as well; the store's
	// unique constraint decides the winner.
	if err := m.Roles.Create(ctx, roleName); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrRoleAlreadyExists
		}
		return storeErr(err)
	}

	if err := m.assign(ctx, user, roleName); err != nil {
		slogx.FromContext(ctx).Error("role created but not assigned",
			slog.String("role", roleName),
			slog.String("user_id", user.ID),
			slog.Any("err", err),
		)
		return err
	}

	slogx.FromContext(ctx).Info("role created", slog.String("role", roleName), slog.String("user_id", user.ID))
	return nil
}

// AssignExistingRole grants an existing role to username. Granting a role
// the user already holds succeeds without change.
func (m *RoleManager) AssignExistingRole(ctx context.Context, username, roleName string) error {
	user, err := m.lookup(ctx, username, roleName)
	if err != nil {
		return err
	}

	exists, err := m.Roles.Exists(ctx, roleName)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return ErrRoleNotFound
	}

	if err := m.assign(ctx, user, roleName); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("role assigned", slog.String("role", roleName), slog.String("user_id", user.ID))
	return nil
}

func (m *RoleManager) lookup(ctx context.Context, username, roleName string) (domain.User, error) {
	if username == "" || roleName == "" {
		return domain.User{}, ErrInvalidInput
	}
	user, found, err := m.Credentials.FindByUsername(ctx, username)
	if err != nil {
		return domain.User{}, storeErr(err)
	}
	if !found {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *RoleManager) assign(ctx context.Context, user domain.User, roleName string) error {
	err := m.Roles.Assign(ctx, user, roleName)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrRoleNotFound
	default:
		return storeErr(err)
	}
}

// RoleCatalog lists every known role.
type RoleCatalog interface {
	List(ctx context.Context) ([]domain.Role, error)
}

type RolesService struct {
	Catalog RoleCatalog
}

// ListAll returns all roles in the system ordered by name.
func (s *RolesService) ListAll(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return roles, nil
}
