/*
Package authsdk provides a client SDK for the eshop authentication service,
along with the request, response and error types the service itself writes.

# SDKClient vs Session

SDKClient covers the unauthenticated endpoints: registration, login, the
role management endpoints when they are left open, and health checks.
Logging in returns a Session which attaches the access token to every
request:

	client := authsdk.NewSDKClient("https://auth.example.com")

	if err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Secret1",
	}); err != nil {
		return err
	}

	session, err := client.AuthenticateWithPassword(ctx, "alice", "Secret1")
	if err != nil {
		return err
	}

	info, err := session.GetUserInfo(ctx)

Tokens are not refreshed. Once the access token expires the session returns
ErrSessionExpired and the caller logs in again.

# Errors

Non-2xx responses are returned as *APIError. Predefined errors compare by
code, so errors.Is works against them:

	_, err := client.AuthenticateWithPassword(ctx, "alice", "wrong")
	if errors.Is(err, authsdk.ErrInvalidCredentials) {
		// prompt again
	}

Registration rejected by the credential store carries the reasons in
APIError.Reasons, and request validation failures carry per-field messages
in APIError.Fields.
*/
package authsdk
