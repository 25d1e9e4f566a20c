package http

import (
	"errors"
	"net/http"

	"github.com/rksoft/eshop/internal/auth/service"
	"github.com/rksoft/eshop/pkg/authsdk"
	"github.com/rksoft/eshop/pkg/httpx"
	"github.com/rksoft/eshop/pkg/slogx"
)

// writeServiceError maps a service error to its response. Anything not
// recognised is logged and reported as a server error without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var cse *service.CredentialStoreError

	switch {
	case errors.As(err, &cse):
		authsdk.NewRegistrationRejected(cse.Reasons).WriteError(w)
	case errors.Is(err, service.ErrInvalidInput):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrUserNotFound.WriteError(w)
	case errors.Is(err, service.ErrRoleNotFound):
		authsdk.ErrRoleNotFound.WriteError(w)
	case errors.Is(err, service.ErrRoleAlreadyExists):
		authsdk.ErrRoleAlreadyExists.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// decodeRequest reads a JSON body into dst and runs its validation. It
// writes the error response itself and reports whether to continue.
func decodeRequest[T interface{ Validate() map[string]string }](w http.ResponseWriter, r *http.Request, dst *T) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "request body must be a single valid JSON object").WriteError(w)
		return false
	}
	if errs := (*dst).Validate(); errs != nil {
		authsdk.NewValidationError(errs).WriteError(w)
		return false
	}
	return true
}
