package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rksoft/eshop/internal/auth/store"
	"github.com/rksoft/eshop/internal/auth/store/drivers/sqlite"
	"github.com/rksoft/eshop/internal/auth/service"
	"github.com/rksoft/eshop/pkg/authsdk"
	"github.com/rksoft/eshop/pkg/cryptox"
	"github.com/rksoft/eshop/pkg/httpx"
	"github.com/rksoft/eshop/pkg/jwtx"
	"github.com/rksoft/eshop/pkg/metricsx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

var tokenConfig = service.TokenConfig{
	Issuer:   "https://auth.test",
	Audience: "eshop",
	Validity: 30 * time.Minute,
}

// relaxedLimiters keeps rate limiting out of the way of functional tests.
func relaxedLimiters(string, httpx.RateLimitConfig) httpx.Limiter {
	return httpx.NewMemoryLimiter(httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000})
}

type testEnv struct {
	router *Router
	server *httptest.Server
	client *authsdk.SDKClient
}

type envOption func(*envConfig)

type envConfig struct {
	opts     Options
	limiters httpx.LimiterFactory
	db       Pinger
	now      func() time.Time
}

func withOptions(o Options) envOption                { return func(c *envConfig) { c.opts = o } }
func withLimiters(f httpx.LimiterFactory) envOption { return func(c *envConfig) { c.limiters = f } }
func withPinger(p Pinger) envOption                 { return func(c *envConfig) { c.db = p } }
func withVerifyClock(now func() time.Time) envOption {
	return func(c *envConfig) { c.now = now }
}

func newTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	cfg := envConfig{limiters: relaxedLimiters, db: st}
	for _, o := range options {
		o(&cfg)
	}

	creds, err := store.NewCredentialAdapter(st, cryptox.NewHasher("pepper"), store.DefaultPasswordPolicy)
	require.NoError(t, err)
	roles := store.NewRoleAdapter(st)

	signer, err := jwtx.NewSignerHS256(testKey)
	require.NoError(t, err)
	verifier, err := service.NewTokenVerifier(testKey, tokenConfig, cfg.now)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(verifier, cfg.limiters, metricsx.New(), cfg.db, cfg.opts, logger)
	r.Registrar = &service.Registrar{Credentials: creds, Roles: roles}
	r.Authenticator = &service.Authenticator{Credentials: creds, Roles: roles, Signer: signer, Config: tokenConfig}
	r.RoleManager = &service.RoleManager{Credentials: creds, Roles: roles}
	r.UserService = &service.UserService{Credentials: creds, Roles: roles}
	r.RolesService = &service.RolesService{Catalog: roles}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client := authsdk.NewSDKClient(srv.URL)
	client.CheckRoles = false

	return &testEnv{router: r, server: srv, client: client}
}

func (e *testEnv) post(t *testing.T, path, body string, header http.Header) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) register(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, e.client.Register(context.Background(), authsdk.RegisterRequest{
		Username: username,
		Email:    username + "@x.com",
		Password: "Secret1",
	}))
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.register(t, "alice")

	session, err := env.client.AuthenticateWithPassword(ctx, "alice", "Secret1")
	require.NoError(t, err)
	require.Equal(t, []string{"User"}, session.Roles())

	info, err := session.GetUserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", info.Username)
	require.Equal(t, "alice@x.com", info.Email)
	require.Equal(t, []string{"User"}, info.Roles)

	_, err = session.ListRoles(ctx)
	require.ErrorIs(t, err, authsdk.ErrInsufficientRole)

	require.NoError(t, env.client.CreateRole(ctx, "alice", "Admin"))

	// The old token still only carries User while the profile shows both.
	info, err = session.GetUserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Admin", "User"}, info.Roles)
	require.Equal(t, []string{"User"}, info.TokenRoles)

	require.NoError(t, session.Relogin(ctx, "alice", "Secret1"))
	require.Equal(t, []string{"Admin", "User"}, session.Roles())

	list, err := session.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, list.Roles, 2)
	require.Equal(t, "Admin", list.Roles[0].Name)
	require.Equal(t, "User", list.Roles[1].Name)
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	t.Run("duplicate username", func(t *testing.T) {
		resp := env.post(t, "/api/account/register", `{"username":"alice","email":"a@x.com","password":"Secret1"}`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody[authsdk.ErrorResponse](t, resp)
		require.Equal(t, authsdk.ErrorCodeRegistrationRejected, body.Error)
		require.Equal(t, []string{"Username 'alice' is already taken."}, body.Reasons)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := env.post(t, "/api/account/register", `{"username":"bob"}`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody[authsdk.ValidationErrorResponse](t, resp)
		require.Equal(t, authsdk.ErrorCodeValidation, body.Code)
		require.Equal(t, "required", body.Details["email"])
		require.Equal(t, "required", body.Details["password"])
	})

	t.Run("unknown fields", func(t *testing.T) {
		resp := env.post(t, "/api/account/register", `{"username":"bob","email":"b@x.com","password":"Secret1","admin":true}`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, authsdk.ErrorCodeInvalidRequest, decodeBody[authsdk.ErrorResponse](t, resp).Error)
	})

	t.Run("not json", func(t *testing.T) {
		resp := env.post(t, "/api/account/register", `username=bob`, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRegister_WhitespacePassword(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/account/register", `{"username":"carol","email":"carol@x.com","password":"      "}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := env.client.Login(context.Background(), "carol", "      ")
	require.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	unknown := env.post(t, "/api/account/login", `{"username":"nonexistent","password":"x"}`, nil)
	wrong := env.post(t, "/api/account/login", `{"username":"alice","password":"wrong-password"}`, nil)

	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	require.Equal(t, http.StatusUnauthorized, wrong.StatusCode)

	a, err := io.ReadAll(unknown.Body)
	require.NoError(t, err)
	b, err := io.ReadAll(wrong.Body)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestLogin_TokenResponse(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	resp := env.post(t, "/api/account/login", `{"username":"alice","password":"Secret1"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	tok := decodeBody[authsdk.TokenResponse](t, resp)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, 1800, tok.ExpiresIn)
	require.Equal(t, []string{"User"}, tok.Roles)
	require.Len(t, strings.Split(tok.AccessToken, "."), 3)
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, withLimiters(httpx.MemoryLimiters()))
	body := `{"username":"alice","password":"wrong"}`

	var last *http.Response
	for range httpx.StrictLimit.Burst + 1 {
		last = env.post(t, "/api/account/login", body, nil)
	}
	require.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	require.NotEmpty(t, last.Header.Get("Retry-After"))

	// A different username from the same address has its own bucket.
	other := env.post(t, "/api/account/login", `{"username":"bob","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, other.StatusCode)
}

func TestLogin_RateLimitedAcrossUsernames(t *testing.T) {
	env := newTestEnv(t, withLimiters(httpx.MemoryLimiters()))

	for i := range httpx.ModerateLimit.Burst {
		resp := env.post(t, "/api/account/login", fmt.Sprintf(`{"username":"user%d","password":"Secret1"}`, i), nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Every username is fresh, so only the per-address bucket can stop this.
	last := env.post(t, "/api/account/login", `{"username":"one-more","password":"Secret1"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, last.StatusCode)
}

func TestRoleEndpoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice")
	env.register(t, "bob")

	err := env.client.AssignRole(ctx, "bob", "Manager")
	require.ErrorIs(t, err, authsdk.ErrRoleNotFound)

	require.NoError(t, env.client.CreateRole(ctx, "alice", "Manager"))
	require.ErrorIs(t, env.client.CreateRole(ctx, "bob", "Manager"), authsdk.ErrRoleAlreadyExists)

	require.NoError(t, env.client.AssignRole(ctx, "bob", "Manager"))
	require.NoError(t, env.client.AssignRole(ctx, "bob", "Manager"))

	require.ErrorIs(t, env.client.CreateRole(ctx, "ghost", "Other"), authsdk.ErrUserNotFound)

	session, err := env.client.AuthenticateWithPassword(ctx, "bob", "Secret1")
	require.NoError(t, err)
	require.Equal(t, []string{"Manager", "User"}, session.Roles())
}

func TestRoleEndpoints_AdminRequired(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, withOptions(Options{RoleAdminRequired: true}))
	env.register(t, "alice")

	resp := env.post(t, "/api/account/add-role", `{"username":"alice","role":"Admin"}`, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), `error="invalid_token"`)

	session, err := env.client.AuthenticateWithPassword(ctx, "alice", "Secret1")
	require.NoError(t, err)
	require.ErrorIs(t, session.CreateRole(ctx, "alice", "Admin"), authsdk.ErrInsufficientRole)
	require.ErrorIs(t, session.AssignRole(ctx, "alice", "User"), authsdk.ErrInsufficientRole)
}

func TestProtectedEndpoints_TokenErrors(t *testing.T) {
	now := time.Now()
	env := newTestEnv(t, withVerifyClock(func() time.Time { return now.Add(time.Hour) }))
	env.register(t, "alice")

	resp, err := http.Get(env.server.URL + "/api/user")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := env.client.Login(context.Background(), "alice", "Secret1")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/user", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	expired, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer expired.Body.Close()

	require.Equal(t, http.StatusUnauthorized, expired.StatusCode)
	require.Equal(t, "token expired", decodeBody[authsdk.ErrorResponse](t, expired).ErrorDescription)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth(t *testing.T) {
	ctx := context.Background()

	env := newTestEnv(t, withOptions(Options{BuildVersion: "1.2.3"}))
	live, err := env.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "1.2.3", live.Version)

	ready, err := env.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)

	down := newTestEnv(t, withPinger(failingPinger{}))
	_, err = down.client.GetReadiness(ctx)
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	env.post(t, "/api/account/login", `{"username":"alice","password":"nope"}`, nil)

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `auth_registrations_total{result="success"} 1`)
	require.Contains(t, out, `auth_logins_total{result="invalid_credentials"} 1`)
	require.Contains(t, out, `auth_http_requests_total{route="login",status="401"} 1`)
}

func TestSwaggerDisabledByDefault(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/swagger/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
