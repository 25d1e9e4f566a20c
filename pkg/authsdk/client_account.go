package authsdk

import (
	"context"
	"net/http"
)

// Register creates an account. The server grants it the "User" role.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) error {
	if errs := req.Validate(); errs != nil {
		return NewValidationError(errs)
	}

	var out RegisterResponse
	return c.call(ctx, http.MethodPost, "/api/account/register", "", req, &out)
}

// Login exchanges a username and password for an access token.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	req := LoginRequest{Username: username, Password: password}
	if errs := req.Validate(); errs != nil {
		return nil, NewValidationError(errs)
	}

	var out TokenResponse
	if err := c.call(ctx, http.MethodPost, "/api/account/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthenticateWithPassword logs in and wraps the token in a Session.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, username, password string) (*Session, error) {
	tok, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// CreateRole creates a new role and grants it to the user. It only works
// unauthenticated while the server leaves role management open; otherwise
// use Session.CreateRole.
func (c *SDKClient) CreateRole(ctx context.Context, username, role string) error {
	return c.roleRequest(ctx, nil, "/api/account/add-role", username, role)
}

// AssignRole grants an existing role to the user.
func (c *SDKClient) AssignRole(ctx context.Context, username, role string) error {
	return c.roleRequest(ctx, nil, "/api/account/assign-role", username, role)
}

func (c *SDKClient) roleRequest(ctx context.Context, s *Session, path, username, role string) error {
	req := RoleRequest{Username: username, Role: role}
	if errs := req.Validate(); errs != nil {
		return NewValidationError(errs)
	}

	var out StatusResponse
	if s != nil {
		return s.call(ctx, http.MethodPost, path, req, &out)
	}
	return c.call(ctx, http.MethodPost, path, "", req, &out)
}
