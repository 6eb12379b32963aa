// Package users holds the User repository. Like the other repositories it
// is a set of pure functions over a snapshot; password hashing and
// verification are supplied by the caller so no hash work happens inside a
// mutation.
package users

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

// NewUser is the input of Register. PasswordHash is already hashed.
type NewUser struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
}

// Federated is the input of UpsertFederated. Email is the synthetic address
// derived from the identity token.
type Federated struct {
	ID          string
	Email       string
	DisplayName string
}

// PasswordChecker reports whether password matches hash.
type PasswordChecker func(hash, password string) bool

// DisplayNameFromEmail returns the local part of email.
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return email
	}
	return local
}

func Register(s *models.Snapshot, in NewUser) (*models.Snapshot, models.User, error) {
	email, err := validEmail(in.Email)
	if err != nil {
		return s, models.User{}, err
	}
	if in.PasswordHash == "" {
		return s, models.User{}, fmt.Errorf("%w: password required", common.ErrorInvalidInput)
	}

	hash := in.PasswordHash
	return insert(s, models.User{
		ID:           in.ID,
		Email:        email,
		PasswordHash: &hash,
		DisplayName:  displayName(in.DisplayName, email),
	})
}

// UpsertFederated returns the user with in.Email, creating it without a
// password on first sight.
func UpsertFederated(s *models.Snapshot, in Federated) (*models.Snapshot, models.User, error) {
	email, err := validEmail(in.Email)
	if err != nil {
		return s, models.User{}, err
	}
	if u, err := FindByEmail(s, email); err == nil {
		return s, u, nil
	}
	return insert(s, models.User{
		ID:          in.ID,
		Email:       email,
		DisplayName: displayName(in.DisplayName, email),
	})
}

// Authenticate fails with common.ErrorUnauthorized for an unknown email, a
// passwordless account, or a wrong password.
func Authenticate(s *models.Snapshot, email, password string, check PasswordChecker) (models.User, error) {
	u, err := FindByEmail(s, email)
	if err != nil || !u.HasPassword() || !check(*u.PasswordHash, password) {
		return models.User{}, fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)
	}
	return u, nil
}

func FindByEmail(s *models.Snapshot, email string) (models.User, error) {
	if i, ok := indexByEmail(s, email); ok {
		return s.Users[i], nil
	}
	return models.User{}, fmt.Errorf("%w: user %s", common.ErrorNotFound, models.NormalizeEmail(email))
}

func FindByID(s *models.Snapshot, id string) (models.User, error) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("%w: user %s", common.ErrorNotFound, id)
}

func SetPasswordHash(s *models.Snapshot, email, hash string) (*models.Snapshot, models.User, error) {
	if hash == "" {
		return s, models.User{}, fmt.Errorf("%w: password required", common.ErrorInvalidInput)
	}
	return update(s, email, func(u *models.User) {
		u.PasswordHash = &hash
	})
}

func SetAdmin(s *models.Snapshot, email string, admin bool) (*models.Snapshot, models.User, error) {
	return update(s, email, func(u *models.User) {
		u.IsAdmin = admin
	})
}

func insert(s *models.Snapshot, u models.User) (*models.Snapshot, models.User, error) {
	if u.ID == "" {
		return s, models.User{}, fmt.Errorf("%w: user id required", common.ErrorInvalidInput)
	}
	if _, ok := indexByEmail(s, u.Email); ok {
		return s, models.User{}, fmt.Errorf("%w: email %s", common.ErrorConflict, u.Email)
	}
	if _, err := FindByID(s, u.ID); err == nil {
		return s, models.User{}, fmt.Errorf("%w: user id %s", common.ErrorConflict, u.ID)
	}
	return s.WithUsers(models.Append(s.Users, u)), u, nil
}

func update(s *models.Snapshot, email string, fn func(u *models.User)) (*models.Snapshot, models.User, error) {
	i, ok := indexByEmail(s, email)
	if !ok {
		return s, models.User{}, fmt.Errorf("%w: user %s", common.ErrorNotFound, models.NormalizeEmail(email))
	}
	u := s.Users[i]
	fn(&u)
	return s.WithUsers(models.Replace(s.Users, i, u)), u, nil
}

// indexByEmail compares normalized emails so documents written before
// emails were normalized still match.
func indexByEmail(s *models.Snapshot, email string) (int, bool) {
	want := models.NormalizeEmail(email)
	for i := range s.Users {
		if models.NormalizeEmail(s.Users[i].Email) == want {
			return i, true
		}
	}
	return -1, false
}

func validEmail(email string) (string, error) {
	e := models.NormalizeEmail(email)
	local, domain, ok := strings.Cut(e, "@")
	if !ok || local == "" || domain == "" {
		return "", fmt.Errorf("%w: invalid email %q", common.ErrorInvalidInput, email)
	}
	return e, nil
}

func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DisplayNameFromEmail(email)
}
