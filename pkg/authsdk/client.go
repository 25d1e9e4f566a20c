package authsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the eshop authentication service.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckRoles makes a Session refuse requests its token's roles cannot
	// satisfy without calling the server. Turn it off to exercise the
	// server-side checks.
	CheckRoles bool
}

// NewSDKClient creates a new auth service client with role checking enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckRoles: true,
	}
}
