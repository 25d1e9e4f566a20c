package authsdk

import (
	"context"
	"net/http"
)

// ListRoles retrieves all roles. Requires the Admin role.
func (s *Session) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	if err := s.checkRoles(RoleAdmin); err != nil {
		return nil, err
	}

	var out ListRolesResponse
	if err := s.call(ctx, http.MethodGet, "/api/roles", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRole creates a new role and grants it to username, authenticating
// with the session's token.
func (s *Session) CreateRole(ctx context.Context, username, role string) error {
	return s.client.roleRequest(ctx, s, "/api/account/add-role", username, role)
}

// AssignRole grants an existing role to username.
func (s *Session) AssignRole(ctx context.Context, username, role string) error {
	return s.client.roleRequest(ctx, s, "/api/account/assign-role", username, role)
}
