// Package cryptox wraps the password hashing and digest primitives used by
// the user services.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when the config does not set one.
const DefaultCost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt hash of password. bcrypt embeds a
// per-hash random salt, so equal passwords hash differently.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", common.ErrorInvalidInput)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	hash, err := bcrypt.GenerateFromPassword(pw, cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password longer than 72 bytes", common.ErrorInvalidInput)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Digest returns the hex SHA-256 of the parts joined by NUL bytes.
func Digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
