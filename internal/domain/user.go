package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// User is an account that owns books and publishers and writes reviews.
type User struct {
	Entity
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
	IsSuperuser  bool   `json:"is_superuser"`
}

// CanAuthenticate reports whether the account may obtain or use tokens.
func (u *User) CanAuthenticate() bool {
	return u != nil && u.IsActive
}

// NormalizeEmail trims the address, applies NFC and lower-cases the domain part.
// The local part keeps its case.
func NormalizeEmail(email string) string {
	email = norm.NFC.String(strings.TrimSpace(email))
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// EmailKey is the case-insensitive form used for uniqueness checks and lookups.
func EmailKey(email string) string {
	return strings.ToLower(NormalizeEmail(email))
}
