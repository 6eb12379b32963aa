// Package resettokens holds the password reset token repository. A token is
// consumed together with the password change it authorizes, in one snapshot
// transition.
package resettokens

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/users"
)

type NewToken struct {
	Token     string
	Email     string
	CreatedAt time.Time
}

// ConsumeInput is the input of Consume. PasswordHash is the already hashed new
// password.
type ConsumeInput struct {
	Email        string
	Token        string
	PasswordHash string
	Now          time.Time
}

// Request stores a token for an existing user. Tokens older than ttl are
// dropped on the way.
func Request(s *models.Snapshot, in NewToken, ttl time.Duration) (*models.Snapshot, models.PasswordResetToken, error) {
	if in.Token == "" {
		return s, models.PasswordResetToken{}, fmt.Errorf("%w: token required", common.ErrorInvalidInput)
	}
	u, err := users.FindByEmail(s, in.Email)
	if err != nil {
		return s, models.PasswordResetToken{}, err
	}

	t := models.PasswordResetToken{Token: in.Token, Email: u.Email, CreatedAt: in.CreatedAt.UTC()}
	kept := Prune(s.ResetTokens, in.CreatedAt, ttl)
	return s.WithResetTokens(models.Append(kept, t)), t, nil
}

// Consume sets the user's password and deletes the token. It fails with
// common.ErrorUnauthorized unless an unexpired token matches both token and
// email.
func Consume(s *models.Snapshot, in ConsumeInput, ttl time.Duration) (*models.Snapshot, models.User, error) {
	i, ok := find(s, in.Token, in.Email)
	if !ok || s.ResetTokens[i].Expired(in.Now, ttl) {
		return s, models.User{}, fmt.Errorf("%w: invalid or expired reset token", common.ErrorUnauthorized)
	}

	next, u, err := users.SetPasswordHash(s, in.Email, in.PasswordHash)
	if err != nil {
		return s, models.User{}, err
	}
	return next.WithResetTokens(models.Remove(s.ResetTokens, i)), u, nil
}

// Prune returns tokens without those expired at now. The input is returned
// as is when nothing expired.
func Prune(tokens []models.PasswordResetToken, now time.Time, ttl time.Duration) []models.PasswordResetToken {
	var out []models.PasswordResetToken
	for i, t := range tokens {
		if !t.Expired(now, ttl) {
			if out != nil {
				out = append(out, t)
			}
			continue
		}
		if out == nil {
			out = make([]models.PasswordResetToken, i, len(tokens))
			copy(out, tokens[:i])
		}
	}
	if out == nil {
		return tokens
	}
	return out
}

func find(s *models.Snapshot, token, email string) (int, bool) {
	if token == "" {
		return -1, false
	}
	want := models.NormalizeEmail(email)
	for i, t := range s.ResetTokens {
		if t.Token == token && models.NormalizeEmail(t.Email) == want {
			return i, true
		}
	}
	return -1, false
}
