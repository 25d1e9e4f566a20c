package http

import (
	"net/http"

	"github.com/rksoft/eshop/internal/auth/service"
	"github.com/rksoft/eshop/pkg/authsdk"
	"github.com/rksoft/eshop/pkg/httpx"
)

type RoleAssignHandler struct {
	RoleManager *service.RoleManager
}

// HandleCreate creates a role and grants it to a user.
//
//	@Summary		Create a role and grant it
//	@Description	Creates a brand-new role and grants it to the user. Fails if the role already exists; use assign-role for known roles. Open unless the service requires Admin for role management.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RoleRequest		true	"User and role"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Role already exists or invalid input"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Missing or invalid token (admin mode)"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Missing Admin role (admin mode)"
//	@Failure		404		{object}	authsdk.ErrorResponse	"User not found"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/account/add-role [post].
func (h *RoleAssignHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RoleRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.RoleManager.CreateRole(r.Context(), req.Username, req.Role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

// HandleAssign grants an existing role to a user.
//
//	@Summary		Grant an existing role
//	@Description	Grants a role that already exists. Granting a role the user holds is a no-op.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RoleRequest		true	"User and role"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid input"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Missing or invalid token (admin mode)"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Missing Admin role (admin mode)"
//	@Failure		404		{object}	authsdk.ErrorResponse	"User or role not found"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/account/assign-role [post].
func (h *RoleAssignHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RoleRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.RoleManager.AssignExistingRole(r.Context(), req.Username, req.Role); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{Status: "ok"})
}

type RolesHandler struct {
	RolesService *service.RolesService
}

// ServeHTTP handles the list roles endpoint
//
//	@Summary		List all roles
//	@Description	Returns every role ordered by name. Requires the Admin role.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{object}	authsdk.ListRolesResponse	"List of roles"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Unauthorized - missing or invalid token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"Forbidden - missing Admin role"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/api/roles [get].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := authsdk.ListRolesResponse{
		Roles: make([]authsdk.RoleInfo, len(roles)),
	}
	for i, role := range roles {
		response.Roles[i] = authsdk.RoleInfo{
			ID:        role.ID,
			Name:      role.Name,
			CreatedAt: role.CreatedAt.UTC(),
		}
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}
