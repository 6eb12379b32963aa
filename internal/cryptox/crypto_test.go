package cryptox

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashPassword_CostOutOfRangeFallsBack(t *testing.T) {
	hash, err := HashPassword("pw", 1)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestHashPassword_InvalidInput(t *testing.T) {
	_, err := HashPassword("", bcrypt.MinCost)
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	_, err = HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	assert.False(t, CheckPassword("", "anything"))
}

func TestDigest(t *testing.T) {
	a := Digest("google", "token-1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Digest("google", "token-1"))
	assert.NotEqual(t, a, Digest("google", "token-2"))
	assert.NotEqual(t, Digest("ab", "c"), Digest("a", "bc"))
}
