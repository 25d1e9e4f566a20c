package authsdk

import (
	"context"
	"net/http"
)

// GetUserInfo retrieves the signed-in user's profile. Requires the User role.
func (s *Session) GetUserInfo(ctx context.Context) (*UserInfoResponse, error) {
	if err := s.checkRoles(RoleUser); err != nil {
		return nil, err
	}

	var info UserInfoResponse
	if err := s.call(ctx, http.MethodGet, "/api/user", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
