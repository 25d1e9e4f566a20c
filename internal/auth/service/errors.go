package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrRoleNotFound       = errors.New("role_not_found")
	ErrRoleAlreadyExists  = errors.New("role_already_exists")

	// ErrCredentialStore matches any *CredentialStoreError.
	ErrCredentialStore = errors.New("credential_store_rejected")

	// ErrStore wraps unexpected failures from a backing store.
	ErrStore = errors.New("store_error")
)

// CredentialStoreError carries the credential store's rejection reasons
// verbatim, e.g. a taken username or a password that fails policy.
type CredentialStoreError struct {
	Reasons []string
}

func (e *CredentialStoreError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrCredentialStore.Error()
	}
	return ErrCredentialStore.Error() + ": " + strings.Join(e.Reasons, " ")
}

func (e *CredentialStoreError) Is(target error) bool {
	return target == ErrCredentialStore
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStore, err)
}
