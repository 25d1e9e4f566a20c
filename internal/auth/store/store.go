package store

import (
	"context"
	"errors"

	"github.com/rksoft/eshop/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Repositories are exposed as methods so a Tx can hand out
// the same repositories bound to the transaction.
type Store interface {
	Users() Users
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Inside fn only the tx repositories may be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername looks a user up by exact, case-sensitive username.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

type Roles interface {
	// GetRoleByName fetches a role by its exact name.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListAll returns all roles ordered by name.
	ListAll(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role. The name is unique at the storage layer
	// and a duplicate yields ErrAlreadyExists, even under concurrent inserts.
	CreateRole(ctx context.Context, r domain.Role) error

	// ListRolesForUser returns the roles held by userID ordered by name.
	ListRolesForUser(ctx context.Context, userID string) ([]domain.Role, error)

	// AssignRoleToUser links a user and a role. Assigning a held role is a
	// no-op. Returns ErrNotFound when either side does not exist.
	AssignRoleToUser(ctx context.Context, userID, roleID string) error
}
