package models

import "strings"

// User is a registered account. PasswordHash is nil for accounts created
// from a federated identity.
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash *string `json:"passwordHash"`
	DisplayName  string  `json:"displayName"`
	IsAdmin      bool    `json:"isAdmin"`
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPassword reports whether the account can log in with a password.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
