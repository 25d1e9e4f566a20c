package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

const getUserByID = `SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`

const getUserByUsername = `SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`

const createUser = `INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`

const getRoleByName = `SELECT id, name, created_at FROM roles WHERE name = ?`

const listAllRoles = `SELECT id, name, created_at FROM roles ORDER BY name`

const createRole = `INSERT INTO roles (id, name, created_at) VALUES (?, ?, ?)`

const listRolesForUser = `
SELECT r.id, r.name, r.created_at
FROM roles r
JOIN user_roles ur ON ur.role_id = r.id
WHERE ur.user_id = ?
ORDER BY r.name`

// The primary key on (user_id, role_id) makes re-assignment a no-op while
// foreign key violations still surface.
const assignRoleToUser = `INSERT OR IGNORE INTO user_roles (user_id, role_id, created_at) VALUES (?, ?, ?)`

func (q *queries) getUser(ctx context.Context, query string, arg string) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (q *queries) createUser(ctx context.Context, u domain.User) error {
	_, err := q.db.ExecContext(ctx, createUser, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt.UTC())
	return err
}

func (q *queries) getRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var r domain.Role
	err := q.db.QueryRowContext(ctx, getRoleByName, name).Scan(&r.ID, &r.Name, &r.CreatedAt)
	return r, err
}

func (q *queries) listRoles(ctx context.Context, query string, args ...any) ([]domain.Role, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var r domain.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (q *queries) createRole(ctx context.Context, r domain.Role) error {
	_, err := q.db.ExecContext(ctx, createRole, r.ID, r.Name, r.CreatedAt.UTC())
	return err
}

func (q *queries) assignRoleToUser(ctx context.Context, userID, roleID string, at time.Time) error {
	_, err := q.db.ExecContext(ctx, assignRoleToUser, userID, roleID, at.UTC())
	return err
}
