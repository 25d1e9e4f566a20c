package http

import (
	"net/http"

	"github.com/rksoft/eshop/internal/auth/service"
	"github.com/rksoft/eshop/pkg/authsdk"
	"github.com/rksoft/eshop/pkg/httpx"
)

type UserInfoHandler struct {
	UserService *service.UserService
}

// ServeHTTP returns the caller's profile.
//
//	@Summary		Get user information
//	@Description	Returns the authenticated user's profile, the roles held now, and the roles in the presented token. Requires the User role.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserInfoResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Missing User role"
//	@Failure		404	{object}	authsdk.ErrorResponse	"Token subject no longer exists"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/api/user [get].
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	profile, err := h.UserService.GetProfile(ctx, username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	roles := profile.Roles
	if roles == nil {
		roles = []string{}
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserInfoResponse{
		UserID:     profile.User.ID,
		Username:   profile.User.Username,
		Email:      profile.User.Email,
		Roles:      roles,
		TokenRoles: httpx.RolesFromContext(ctx),
	})
}
