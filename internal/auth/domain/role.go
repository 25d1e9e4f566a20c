package domain

import "time"

// Built-in role names. Role names are case-sensitive.
const (
	// RoleUser is granted to every account at registration.
	RoleUser = "User"

	// RoleAdmin guards administrative endpoints.
	RoleAdmin = "Admin"
)

type Role struct {
	ID        string
	Name      string // unique, case-sensitive
	CreatedAt time.Time
}

// UserRole links a user to a role. The pair is unique.
type UserRole struct {
	UserID    string
	RoleID    string
	CreatedAt time.Time
}
