package models

import "time"

// PasswordResetToken is a single-use token issued by a forgot-password
// request.
type PasswordResetToken struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the token is older than ttl at now. A zero ttl
// means tokens never expire.
func (t PasswordResetToken) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(t.CreatedAt) > ttl
}
