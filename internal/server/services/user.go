// Package services contains server-side business logic. This file implements
// UserService, which handles registration, password and federated login,
// password resets, and resolving bearer tokens back to users.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/cryptox"
	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/auth"
	"github.com/dmitrijs2005/fishtank/internal/server/config"
	"github.com/dmitrijs2005/fishtank/internal/server/ids"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/fish"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/users"
	"github.com/dmitrijs2005/fishtank/internal/server/serializer"
)

const (
	federatedDisplayName = "Google User"
	federatedEmailDomain = "federated.local"
)

// Session is what a successful login hands back to the client.
type Session struct {
	Token string
	User  models.User
}

// UserService provides authentication-related operations. Passwords are
// hashed and verified outside the serializer so bcrypt time is never spent
// while holding the store.
type UserService struct {
	ser        *serializer.Serializer
	issuer     *auth.Issuer
	log        logging.Logger
	bcryptCost int
	resetTTL   time.Duration

	now        func() time.Time
	newID      func() string
	resetToken func() (string, error)
}

func NewUserService(ser *serializer.Serializer, issuer *auth.Issuer, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		ser:        ser,
		issuer:     issuer,
		log:        log.With("module", "users"),
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.ResetTokenValidityDuration,
		now:        time.Now,
		newID:      ids.NewID,
		resetToken: ids.NewResetToken,
	}
}

// Register creates a password account. A non-empty claimOwner must be an
// anonymous owner id; fish uploaded under it move to the new account in the
// same mutation.
func (s *UserService) Register(ctx context.Context, email, password, claimOwner string) (*Session, error) {
	claim, err := anonymousClaim(claimOwner)
	if err != nil {
		return nil, err
	}
	hash, err := cryptox.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	in := users.NewUser{ID: s.newID(), Email: email, PasswordHash: hash}
	u, err := serializer.Mutate(ctx, s.ser, "users.register", func(cur *models.Snapshot) (*models.Snapshot, models.User, error) {
		next, u, err := users.Register(cur, in)
		if err != nil {
			return cur, u, err
		}
		next, err = claimFish(next, claim, u.ID)
		return next, u, err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return s.session(u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := serializer.Read(s.ser, func(cur *models.Snapshot) (models.User, error) {
		return users.Authenticate(cur, email, password, cryptox.CheckPassword)
	})
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// LoginFederated maps an external identity token to a local passwordless
// account, creating it on first sight.
func (s *UserService) LoginFederated(ctx context.Context, identityToken, claimOwner string) (*Session, error) {
	identityToken = strings.TrimSpace(identityToken)
	if identityToken == "" {
		return nil, fmt.Errorf("%w: identity token required", common.ErrorInvalidInput)
	}
	claim, err := anonymousClaim(claimOwner)
	if err != nil {
		return nil, err
	}

	in := users.Federated{
		ID:          s.newID(),
		Email:       FederatedEmail(identityToken),
		DisplayName: federatedDisplayName,
	}
	u, err := serializer.Mutate(ctx, s.ser, "users.upsert_federated", func(cur *models.Snapshot) (*models.Snapshot, models.User, error) {
		next, u, err := users.UpsertFederated(cur, in)
		if err != nil {
			return cur, u, err
		}
		next, err = claimFish(next, claim, u.ID)
		return next, u, err
	})
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// FederatedEmail is the synthetic address of a federated identity. The same
// token always yields the same address.
func FederatedEmail(identityToken string) string {
	return "google_" + cryptox.Digest("google", identityToken)[:24] + "@" + federatedEmailDomain
}

// RequestPasswordReset stores and returns a single-use reset token.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	tok, err := s.resetToken()
	if err != nil {
		return "", err
	}

	in := resettokens.NewToken{Token: tok, Email: email, CreatedAt: s.now()}
	_, err = serializer.Mutate(ctx, s.ser, "resettokens.request", func(cur *models.Snapshot) (*models.Snapshot, models.PasswordResetToken, error) {
		return resettokens.Request(cur, in, s.resetTTL)
	})
	if err != nil {
		return "", err
	}
	return tok, nil
}

// ResetPassword changes the password and consumes the token in one commit.
func (s *UserService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	hash, err := cryptox.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	in := resettokens.ConsumeInput{Email: email, Token: token, PasswordHash: hash, Now: s.now()}
	u, err := serializer.Mutate(ctx, s.ser, "resettokens.consume", func(cur *models.Snapshot) (*models.Snapshot, models.User, error) {
		return resettokens.Consume(cur, in, s.resetTTL)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password reset", "user_id", u.ID)
	return nil
}

// Authorize resolves a bearer token to the current state of its user.
func (s *UserService) Authorize(ctx context.Context, token string) (models.User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	u, err := users.FindByID(s.ser.Committed(), claims.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: unknown user", common.ErrorUnauthorized)
	}
	return u, nil
}

func (s *UserService) SetAdmin(ctx context.Context, email string, admin bool) (models.User, error) {
	u, err := serializer.Mutate(ctx, s.ser, "users.set_admin", func(cur *models.Snapshot) (*models.Snapshot, models.User, error) {
		return users.SetAdmin(cur, email, admin)
	})
	if err != nil {
		return u, err
	}
	s.log.Info(ctx, "admin flag changed", "user_id", u.ID, "is_admin", admin)
	return u, nil
}

// CreateAdmin registers an admin account, or promotes and re-passwords an
// existing one.
func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (models.User, error) {
	hash, err := cryptox.HashPassword(password, s.bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	in := users.NewUser{ID: s.newID(), Email: email, PasswordHash: hash}
	return serializer.Mutate(ctx, s.ser, "users.create_admin", func(cur *models.Snapshot) (*models.Snapshot, models.User, error) {
		next, _, err := users.Register(cur, in)
		if errors.Is(err, common.ErrorConflict) {
			next, _, err = users.SetPasswordHash(cur, in.Email, hash)
		}
		if err != nil {
			return cur, models.User{}, err
		}
		return users.SetAdmin(next, in.Email, true)
	})
}

func (s *UserService) session(u models.User) (*Session, error) {
	tok, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}
	return &Session{Token: tok, User: u}, nil
}

func anonymousClaim(owner string) (models.OwnerID, error) {
	o := models.OwnerID(strings.TrimSpace(owner))
	if o == "" || o.IsAnonymous() {
		return o, nil
	}
	return "", fmt.Errorf("%w: only anonymous owner ids can be claimed", common.ErrorInvalidInput)
}

func claimFish(s *models.Snapshot, claim models.OwnerID, userID string) (*models.Snapshot, error) {
	if claim == "" {
		return s, nil
	}
	next, _, err := fish.ReassignOwner(s, claim, models.OwnerID(userID))
	return next, err
}
