package store

import (
	"context"
	"errors"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/pkg/idx"
)

// RoleAdapter exposes the roles of a Store by name.
type RoleAdapter struct {
	store Store
}

func NewRoleAdapter(st Store) *RoleAdapter {
	return &RoleAdapter{store: st}
}

// Exists reports whether a role with exactly this name exists.
func (a *RoleAdapter) Exists(ctx context.Context, name string) (bool, error) {
	_, err := a.store.Roles().GetRoleByName(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Create inserts a role. A duplicate name yields ErrAlreadyExists.
func (a *RoleAdapter) Create(ctx context.Context, name string) error {
	return a.store.Roles().CreateRole(ctx, domain.Role{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	})
}

// RolesOf returns the names of the roles held by user, sorted.
func (a *RoleAdapter) RolesOf(ctx context.Context, user domain.User) ([]string, error) {
	roles, err := a.store.Roles().ListRolesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names, nil
}

// Assign grants the named role to user. Granting a held role is a no-op.
func (a *RoleAdapter) Assign(ctx context.Context, user domain.User, name string) error {
	return a.store.WithTx(ctx, func(tx Tx) error {
		role, err := tx.Roles().GetRoleByName(ctx, name)
		if err != nil {
			return err
		}
		return tx.Roles().AssignRoleToUser(ctx, user.ID, role.ID)
	})
}

// List returns every role.
func (a *RoleAdapter) List(ctx context.Context) ([]domain.Role, error) {
	return a.store.Roles().ListAll(ctx)
}
