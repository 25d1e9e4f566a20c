package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/internal/auth/store"
	"github.com/rksoft/eshop/internal/auth/store/drivers/sqlite"
	"github.com/rksoft/eshop/pkg/idx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// newFileStore opens a database file through FileDSN, as the service does.
func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createUser(t *testing.T, st store.Store, username string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$stub",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func createRole(t *testing.T, st store.Store, name string) domain.Role {
	t.Helper()

	r := domain.Role{ID: idx.New().String(), Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Roles().CreateRole(context.Background(), r))
	return r
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestMigrations_SeedDefaultRole(t *testing.T) {
	st := newStore(t)

	role, err := st.Roles().GetRoleByName(context.Background(), domain.RoleUser)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, role.Name)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	alice := createUser(t, st, "alice")

	got, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
	require.Equal(t, "alice@example.com", got.Email)
	require.WithinDuration(t, alice.CreatedAt, got.CreatedAt, time.Second)

	got, err = st.Users().GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)

	_, err = st.Users().GetUserByUsername(ctx, "Alice")
	require.ErrorIs(t, err, store.ErrNotFound, "usernames are case-sensitive")

	_, err = st.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := alice
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	createRole(t, st, "Admin")
	createRole(t, st, "admin") // distinct: names are case-sensitive

	err := st.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "Admin", CreatedAt: time.Now()})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	all, err := st.Roles().ListAll(ctx)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	require.Equal(t, []string{"Admin", "User", "admin"}, names)

	_, err = st.Roles().GetRoleByName(ctx, "Support")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAssignRoleToUser(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	alice := createUser(t, st, "alice")
	admin := createRole(t, st, "Admin")
	user, err := st.Roles().GetRoleByName(ctx, domain.RoleUser)
	require.NoError(t, err)

	require.NoError(t, st.Roles().AssignRoleToUser(ctx, alice.ID, user.ID))
	require.NoError(t, st.Roles().AssignRoleToUser(ctx, alice.ID, admin.ID))
	require.NoError(t, st.Roles().AssignRoleToUser(ctx, alice.ID, admin.ID), "re-assignment is a no-op")

	roles, err := st.Roles().ListRolesForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, "Admin", roles[0].Name)
	require.Equal(t, "User", roles[1].Name)

	t.Run("unknown user", func(t *testing.T) {
		err := st.Roles().AssignRoleToUser(ctx, idx.New().String(), admin.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := st.Roles().AssignRoleToUser(ctx, alice.ID, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("no roles", func(t *testing.T) {
		bob := createUser(t, st, "bob")
		roles, err := st.Roles().ListRolesForUser(ctx, bob.ID)
		require.NoError(t, err)
		require.Empty(t, roles)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "Temp", CreatedAt: time.Now()}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = st.Roles().GetRoleByName(ctx, "Temp")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("commit on success", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: "Kept", CreatedAt: time.Now()})
		})
		require.NoError(t, err)

		_, err = st.Roles().GetRoleByName(ctx, "Kept")
		require.NoError(t, err)
	})

	t.Run("nested tx is refused", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.Error(t, err)
	})
}

func TestWithTx_ConcurrentReadThenWrite(t *testing.T) {
	ctx := context.Background()
	st := newFileStore(t)

	const workers = 32
	users := make([]domain.User, workers)
	for i := range users {
		users[i] = createUser(t, st, fmt.Sprintf("user%02d", i))
	}

	// Each transaction reads before it writes while other writers commit.
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(2)
		go func(u domain.User) {
			defer wg.Done()
			err := st.WithTx(ctx, func(tx store.Tx) error {
				role, err := tx.Roles().GetRoleByName(ctx, domain.RoleUser)
				if err != nil {
					return err
				}
				return tx.Roles().AssignRoleToUser(ctx, u.ID, role.ID)
			})
			assert.NoError(t, err)
		}(u)
		go func(name string) {
			defer wg.Done()
			r := domain.Role{ID: idx.New().String(), Name: name, CreatedAt: time.Now().UTC()}
			assert.NoError(t, st.Roles().CreateRole(ctx, r))
		}("role-" + u.Username)
	}
	wg.Wait()

	for _, u := range users {
		roles, err := st.Roles().ListRolesForUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, roles, 1, u.Username)
		require.Equal(t, domain.RoleUser, roles[0].Name)
	}
}
