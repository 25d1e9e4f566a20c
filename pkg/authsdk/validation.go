package authsdk

import (
	"net/mail"
	"strings"
)

const (
	requiredReason = "required"
	maxFieldLength = 256
)

// Validate checks that all fields are present and the email parses. Content
// rules such as password strength belong to the server's credential store.
// Returns nil when the request is valid.
func (r RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)

	checkRequired(errs, "username", r.Username)
	checkPassword(errs, r.Password)

	email := strings.TrimSpace(r.Email)
	switch {
	case email == "":
		errs["email"] = requiredReason
	case len(email) > maxFieldLength:
		errs["email"] = "too long"
	default:
		if _, err := mail.ParseAddress(email); err != nil {
			errs["email"] = "must be a valid email address"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks that both fields are present.
func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	checkRequired(errs, "username", r.Username)
	checkPassword(errs, r.Password)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Validate checks that both fields are present. Role names are
// case-sensitive and are not otherwise restricted.
func (r RoleRequest) Validate() map[string]string {
	errs := make(map[string]string)
	checkRequired(errs, "username", r.Username)
	checkRequired(errs, "role", r.Role)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func checkRequired(errs map[string]string, field, value string) {
	switch {
	case strings.TrimSpace(value) == "":
		errs[field] = requiredReason
	case len(value) > maxFieldLength:
		errs[field] = "too long"
	}
}

// checkPassword only requires a non-empty value. Whitespace is a legal
// password and strength is up to the credential store.
func checkPassword(errs map[string]string, value string) {
	switch {
	case value == "":
		errs["password"] = requiredReason
	case len(value) > maxFieldLength:
		errs["password"] = "too long"
	}
}
