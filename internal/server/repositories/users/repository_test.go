package users

import (
	"testing"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainChecker stands in for bcrypt: the "hash" is the password itself.
func plainChecker(hash, password string) bool { return hash == password }

func register(t *testing.T, s *models.Snapshot, id, email, hash string) *models.Snapshot {
	t.Helper()
	next, _, err := Register(s, NewUser{ID: id, Email: email, PasswordHash: hash})
	require.NoError(t, err)
	return next
}

func TestRegister(t *testing.T) {
	s := models.EmptySnapshot()

	next, u, err := Register(s, NewUser{ID: "u1", Email: " Alice@Example.COM ", PasswordHash: "h1"})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "alice", u.DisplayName)
	require.NotNil(t, u.PasswordHash)
	assert.Equal(t, "h1", *u.PasswordHash)
	assert.False(t, u.IsAdmin)
	assert.Empty(t, s.Users)
	assert.Len(t, next.Users, 1)
}

func TestRegister_EmailConflictIsCaseInsensitive(t *testing.T) {
	s := register(t, models.EmptySnapshot(), "u1", "a@x.com", "p")

	next, _, err := Register(s, NewUser{ID: "u2", Email: "A@X.com", PasswordHash: "p2"})
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Same(t, s, next)
}

func TestRegister_Validation(t *testing.T) {
	s := register(t, models.EmptySnapshot(), "u1", "a@x.com", "p")

	tests := []struct {
		name    string
		in      NewUser
		wantErr error
	}{
		{name: "no at sign", in: NewUser{ID: "u2", Email: "bob", PasswordHash: "p"}, wantErr: common.ErrorInvalidInput},
		{name: "empty local part", in: NewUser{ID: "u2", Email: "@x.com", PasswordHash: "p"}, wantErr: common.ErrorInvalidInput},
		{name: "no password", in: NewUser{ID: "u2", Email: "b@x.com"}, wantErr: common.ErrorInvalidInput},
		{name: "no id", in: NewUser{Email: "b@x.com", PasswordHash: "p"}, wantErr: common.ErrorInvalidInput},
		{name: "id taken", in: NewUser{ID: "u1", Email: "b@x.com", PasswordHash: "p"}, wantErr: common.ErrorConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Register(s, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	s := register(t, models.EmptySnapshot(), "u1", "a@x.com", "secret")
	s, _, err := UpsertFederated(s, Federated{ID: "u2", Email: "google_1@x.com"})
	require.NoError(t, err)

	u, err := Authenticate(s, "A@x.com", "secret", plainChecker)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	for _, tc := range []struct{ email, password string }{
		{"a@x.com", "wrong"},
		{"nobody@x.com", "secret"},
		{"google_1@x.com", ""},
	} {
		_, err := Authenticate(s, tc.email, tc.password, plainChecker)
		assert.ErrorIs(t, err, common.ErrorUnauthorized, tc.email)
	}
}

func TestUpsertFederated_Idempotent(t *testing.T) {
	s := models.EmptySnapshot()
	in := Federated{ID: "u1", Email: "google_abc@federated.local", DisplayName: "Google User"}

	s1, first, err := UpsertFederated(s, in)
	require.NoError(t, err)
	assert.Nil(t, first.PasswordHash)
	assert.Equal(t, "Google User", first.DisplayName)

	in.ID = "u-other"
	s2, second, err := UpsertFederated(s1, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Same(t, s1, s2, "second sight changes nothing")
}

func TestFind(t *testing.T) {
	s := register(t, models.EmptySnapshot(), "u1", "a@x.com", "p")

	u, err := FindByID(s, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = FindByID(s, "u2")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = FindByEmail(s, "b@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetPasswordHashAndAdmin(t *testing.T) {
	s := register(t, models.EmptySnapshot(), "u1", "a@x.com", "old")

	next, u, err := SetPasswordHash(s, "a@x.com", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", *u.PasswordHash)
	assert.Equal(t, "old", *s.Users[0].PasswordHash, "input snapshot must not change")

	_, _, err = SetPasswordHash(next, "a@x.com", "")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	promoted, u, err := SetAdmin(next, "A@X.COM", true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.True(t, promoted.Users[0].IsAdmin)

	_, _, err = SetAdmin(next, "z@x.com", true)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDisplayNameFromEmail(t *testing.T) {
	assert.Equal(t, "bob", DisplayNameFromEmail("bob@x.com"))
	assert.Equal(t, "@x.com", DisplayNameFromEmail("@x.com"))
	assert.Equal(t, "plain", DisplayNameFromEmail("plain"))
}
