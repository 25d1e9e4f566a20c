package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	st := NewStoreFromDB(db)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return st, mock
}

var (
	userColumns = []string{"id", "username", "email", "password_hash", "created_at"}
	roleColumns = []string{"id", "name", "created_at"}
)

func TestUsers_GetUserByUsername(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(getUserByUsername).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("01HZX0000000000000000000AA", "alice", "alice@example.com", "$argon2id$stub", created))

	u, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, domain.User{
		ID:           "01HZX0000000000000000000AA",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$stub",
		CreatedAt:    created,
	}, u)
}

func TestUsers_GetUserByUsername_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(getUserByUsername).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := st.Users().GetUserByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_CreateUser_Duplicate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(createUser).
		WithArgs("id-1", "alice", "alice@example.com", "hash", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "users_username_key"})

	err := st.Users().CreateUser(context.Background(), domain.User{
		ID:           "id-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRoles_ListAll(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(listAllRoles).
		WillReturnRows(sqlmock.NewRows(roleColumns).
			AddRow("r1", "Admin", now).
			AddRow("r2", "User", now))

	roles, err := st.Roles().ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, "Admin", roles[0].Name)
	require.Equal(t, "User", roles[1].Name)
}

func TestRoles_CreateRole_Duplicate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(createRole).
		WithArgs("r1", "Admin", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "roles_name_key"})

	err := st.Roles().CreateRole(context.Background(), domain.Role{ID: "r1", Name: "Admin", CreatedAt: time.Now()})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRoles_AssignRoleToUser_MissingUser(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(assignRoleToUser).
		WithArgs("u1", "r1", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "user_roles_user_id_fkey"})

	err := st.Roles().AssignRoleToUser(context.Background(), "u1", "r1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRoles_AssignRoleToUser_OtherErrorsPassThrough(t *testing.T) {
	st, mock := newMockStore(t)
	boom := errors.New("connection reset")

	mock.ExpectExec(assignRoleToUser).
		WithArgs("u1", "r1", sqlmock.AnyArg()).
		WillReturnError(boom)

	err := st.Roles().AssignRoleToUser(context.Background(), "u1", "r1")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_Commit(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(getRoleByName).
		WithArgs("Admin").
		WillReturnRows(sqlmock.NewRows(roleColumns).AddRow("r1", "Admin", now))
	mock.ExpectExec(assignRoleToUser).
		WithArgs("u1", "r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		role, err := tx.Roles().GetRoleByName(context.Background(), "Admin")
		if err != nil {
			return err
		}
		return tx.Roles().AssignRoleToUser(context.Background(), "u1", role.ID)
	})
	require.NoError(t, err)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(getRoleByName).
		WithArgs("Missing").
		WillReturnRows(sqlmock.NewRows(roleColumns))
	mock.ExpectRollback()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		_, err := tx.Roles().GetRoleByName(context.Background(), "Missing")
		return err
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_NestedRefused(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.WithTx(context.Background(), func(store.Tx) error { return nil })
	})
	require.ErrorIs(t, err, sql.ErrTxDone)
}
