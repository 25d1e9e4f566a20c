package store

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// UsernameCharacters are the characters accepted in a username.
const UsernameCharacters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

// PasswordPolicy describes what the credential store accepts for new accounts.
type PasswordPolicy struct {
	MinLength     int
	RequireDigit  bool
	RequireUpper  bool
	RequireLower  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy only enforces a minimum length of six characters.
var DefaultPasswordPolicy = PasswordPolicy{MinLength: 6}

// Check returns one human readable reason per violated rule, or nil.
func (p PasswordPolicy) Check(password string) []string {
	var reasons []string

	if utf8.RuneCountInString(password) < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if p.RequireDigit && !strings.ContainsAny(password, "0123456789") {
		reasons = append(reasons, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireUpper && !strings.ContainsFunc(password, isUpper) {
		reasons = append(reasons, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if p.RequireLower && !strings.ContainsFunc(password, isLower) {
		reasons = append(reasons, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireSymbol && !strings.ContainsFunc(password, isSymbol) {
		reasons = append(reasons, "Passwords must have at least one non alphanumeric character.")
	}

	return reasons
}

func checkUsername(username string) []string {
	for _, r := range username {
		if !strings.ContainsRune(UsernameCharacters, r) {
			return []string{fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", username)}
		}
	}
	return nil
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isSymbol(r rune) bool {
	return !isUpper(r) && !isLower(r) && (r < '0' || r > '9')
}
