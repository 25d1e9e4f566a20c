package postgres

import (
	"context"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
)

type rolesRepo struct {
	q *queries
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	role, err := r.q.getRoleByName(ctx, name)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	return r.q.listRoles(ctx, listAllRoles)
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	return mapConstraint(r.q.createRole(ctx, role))
}

func (r *rolesRepo) ListRolesForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	return r.q.listRoles(ctx, listRolesForUser, userID)
}

func (r *rolesRepo) AssignRoleToUser(ctx context.Context, userID, roleID string) error {
	return mapConstraint(r.q.assignRoleToUser(ctx, userID, roleID, time.Now()))
}
