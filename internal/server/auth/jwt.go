// Package auth issues and verifies the bearer tokens handed to clients after
// login. Tokens are HS256-signed JWTs with an expiry; clients treat them as
// opaque strings.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard registered claims plus the user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry of tokenString. Expired tokens
// yield common.ErrTokenExpired; any other failure yields
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Issuer binds a secret and lifetime so callers only pass the identity.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

func NewIssuer(secretKey string, validity time.Duration) *Issuer {
	return &Issuer{secret: []byte(secretKey), validity: validity}
}

func (i *Issuer) Issue(userID, email string) (string, error) {
	return GenerateToken(userID, email, i.secret, i.validity)
}

func (i *Issuer) Parse(token string) (*Claims, error) {
	return ParseToken(token, i.secret)
}
