// Package ids issues entity identifiers and opaque tokens.
package ids

import (
	"fmt"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/google/uuid"
)

// resetTokenBytes is the entropy of a password reset token.
const resetTokenBytes = 24

// NewID returns a random (v4) UUID string.
func NewID() string {
	return uuid.NewString()
}

// NewAnonymousOwner mints an owner id for an upload made without an account.
func NewAnonymousOwner() models.OwnerID {
	return models.AnonymousOwnerID(uuid.NewString())
}

// NewResetToken returns an opaque single-use token.
func NewResetToken() (string, error) {
	tok, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return "", fmt.Errorf("%w: generate reset token: %v", common.ErrorInternal, err)
	}
	return tok, nil
}
