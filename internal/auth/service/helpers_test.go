package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/internal/auth/store"
	"github.com/rksoft/eshop/internal/auth/store/drivers/sqlite"
	"github.com/rksoft/eshop/pkg/cryptox"
	"github.com/rksoft/eshop/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

var testTokenConfig = TokenConfig{
	Issuer:   "https://auth.test",
	Audience: "eshop",
	Validity: 30 * time.Minute,
}

// clock is a settable time source shared by issuer and verifier.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store       *sqlite.Store
	credentials *store.CredentialAdapter
	roles       *store.RoleAdapter
	clock       *clock

	registrar *Registrar
	auth      *Authenticator
	manager   *RoleManager
	verifier  *TokenVerifier
	users     *UserService
	catalog   *RolesService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, ":memory:")
}

// newFileFixture runs on a database file with the production DSN, so
// connections are pooled and writers really contend.
func newFileFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
}

func newFixtureAt(t *testing.T, dsn string) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	creds, err := store.NewCredentialAdapter(st, cryptox.NewHasher("test-pepper"), store.DefaultPasswordPolicy)
	require.NoError(t, err)
	roles := store.NewRoleAdapter(st)

	signer, err := jwtx.NewSignerHS256(testKey)
	require.NoError(t, err)

	clk := newClock()
	verifier, err := NewTokenVerifier(testKey, testTokenConfig, clk.Now)
	require.NoError(t, err)

	return &fixture{
		store:       st,
		credentials: creds,
		roles:       roles,
		clock:       clk,
		registrar:   &Registrar{Credentials: creds, Roles: roles},
		auth: &Authenticator{
			Credentials: creds,
			Roles:       roles,
			Signer:      signer,
			Config:      testTokenConfig,
			Now:         clk.Now,
		},
		manager:  &RoleManager{Credentials: creds, Roles: roles},
		verifier: verifier,
		users:    &UserService{Credentials: creds, Roles: roles},
		catalog:  &RolesService{Catalog: roles},
	}
}

func (f *fixture) register(t *testing.T, username, password string) domain.User {
	t.Helper()

	u, err := f.registrar.Register(context.Background(), username, username+"@x.com", password)
	require.NoError(t, err)
	return u
}

func (f *fixture) rolesOf(t *testing.T, username string) []string {
	t.Helper()

	p, err := f.users.GetProfile(context.Background(), username)
	require.NoError(t, err)
	return p.Roles
}

// fakeRoles is a RoleStore whose calls can be made to fail.
type fakeRoles struct {
	exists    bool
	createErr error
	assignErr error

	created  []string
	assigned []string
}

func (f *fakeRoles) Exists(context.Context, string) (bool, error) { return f.exists, nil }

func (f *fakeRoles) Create(_ context.Context, name string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, name)
	return nil
}

func (f *fakeRoles) RolesOf(context.Context, domain.User) ([]string, error) { return f.assigned, nil }

func (f *fakeRoles) Assign(_ context.Context, _ domain.User, name string) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assigned = append(f.assigned, name)
	return nil
}
