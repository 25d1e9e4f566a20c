package http

import (
	"errors"
	"net/http"

	"github.com/rksoft/eshop/internal/auth/service"
	"github.com/rksoft/eshop/pkg/authsdk"
	"github.com/rksoft/eshop/pkg/httpx"
	"github.com/rksoft/eshop/pkg/metricsx"
)

type RegisterHandler struct {
	Registrar *service.Registrar
	Metrics   *metricsx.Metrics
}

// ServeHTTP creates an account and grants it the User role.
//
//	@Summary		Register an account
//	@Description	Creates a user through the credential store and grants the default "User" role. Store rejections such as a taken username or a short password are returned verbatim in reasons.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest			true	"Account details"
//	@Success		200		{object}	authsdk.RegisterResponse
//	@Failure		400		{object}	authsdk.ErrorResponse			"Rejected by the credential store"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Missing or malformed fields"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/api/account/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		h.Metrics.ObserveRegistration("invalid_input")
		return
	}

	user, err := h.Registrar.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.Metrics.ObserveRegistration(registrationResult(err))
		writeServiceError(w, r, err)
		return
	}

	h.Metrics.ObserveRegistration("success")
	httpx.WriteJSON(w, http.StatusOK, authsdk.RegisterResponse{
		Status: "registered",
		UserID: user.ID,
	})
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, service.ErrCredentialStore):
		return "rejected"
	case errors.Is(err, service.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

type LoginHandler struct {
	Authenticator *service.Authenticator
	Metrics       *metricsx.Metrics
}

// ServeHTTP exchanges a username and password for an access token.
//
//	@Summary		Log in
//	@Description	Verifies the password and returns an HS256 access token whose roles claim holds the user's roles at issuance. Unknown users and wrong passwords get the same error.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest			true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid username or password"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/api/account/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		h.Metrics.ObserveLogin("invalid_input")
		return
	}

	tok, err := h.Authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Metrics.ObserveLogin("invalid_credentials")
		} else {
			h.Metrics.ObserveLogin("error")
		}
		writeServiceError(w, r, err)
		return
	}

	h.Metrics.ObserveLogin("success")
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: tok.Token,
		TokenType:   tok.TokenType,
		ExpiresIn:   int(tok.ExpiresIn().Seconds()),
		ExpiresAt:   tok.ExpiresAt.UTC(),
		Roles:       tok.Roles,
	})
}
