package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken("user-123", "a@x.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("u1", "u1@x.com", secret, -1*time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", "u2@x.com", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "admin"})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(s, []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestIssuer(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("k", time.Minute)
	tok, err := iss.Issue("u3", "u3@x.com")
	require.NoError(t, err)

	claims, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u3", claims.UserID)

	_, err = NewIssuer("other", time.Minute).Parse(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
