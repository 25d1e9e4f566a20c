package authsdk

import "time"

// Role names the service grants out of the box.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// ============================================================================
// Error Response Types
// ============================================================================

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error            string   `json:"error" example:"invalid_credentials"`
	ErrorDescription string   `json:"error_description" example:"invalid username or password"`
	Reasons          []string `json:"reasons,omitempty"`
}

// ValidationErrorResponse is returned when request fields fail validation.
type ValidationErrorResponse struct {
	Code    string            `json:"code" example:"validation_error"`
	Message string            `json:"message" example:"request validation failed"`
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest is the body of POST /api/account/register.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"Secret1"`
}

// RegisterResponse confirms a created account.
type RegisterResponse struct {
	Status string `json:"status" example:"registered"`
	UserID string `json:"user_id" example:"01J0Z3M5V7Q8R9S0T1U2V3W4X5"`
}

// LoginRequest is the body of POST /api/account/login.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"Secret1"`
}

// TokenResponse carries a freshly issued access token. There is no refresh
// token; log in again once it expires.
type TokenResponse struct {
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type" example:"Bearer"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in" example:"1800"`

	ExpiresAt time.Time `json:"expires_at"`

	// Roles embedded in the token, sorted.
	Roles []string `json:"roles" example:"User"`
}

// ============================================================================
// Role Types
// ============================================================================

// RoleRequest is the body of both role management endpoints.
type RoleRequest struct {
	Username string `json:"username" example:"alice"`
	Role     string `json:"role" example:"Admin"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// RoleInfo represents a single role in the system.
type RoleInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" example:"Admin"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRolesResponse contains the list of all roles ordered by name.
type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

// ============================================================================
// User Types
// ============================================================================

// UserInfoResponse is returned from GET /api/user.
type UserInfoResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`

	// Roles the user holds now.
	Roles []string `json:"roles"`

	// TokenRoles are the roles in the presented token, which can lag
	// behind Roles until the user logs in again.
	TokenRoles []string `json:"token_roles"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Uptime  string `json:"uptime,omitempty" example:"1h23m45s"`
	Version string `json:"version,omitempty"`

	// Checks is only set by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}
