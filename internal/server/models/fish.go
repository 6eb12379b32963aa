// Package models defines the entities held in a store snapshot.
package models

import (
	"strings"
	"time"
)

// Fish is one uploaded drawing.
type Fish struct {
	ID              string    `json:"id"`
	ImageRef        string    `json:"imageRef"`
	Artist          string    `json:"artist"`
	CreatedAt       time.Time `json:"createdAt"`
	Upvotes         int64     `json:"upvotes"`
	Downvotes       int64     `json:"downvotes"`
	IsVisible       bool      `json:"isVisible"`
	Deleted         bool      `json:"deleted"`
	NeedsModeration bool      `json:"needsModeration"`
	IsSaved         bool      `json:"isSaved"`
	OwnerUserID     OwnerID   `json:"ownerUserId"`
}

// OwnerID references the owner of a fish. It is either a User id or an
// anonymous owner minted at upload time for a client that has no account.
// Anonymous owners carry AnonymousOwnerPrefix and never match a User id.
type OwnerID string

const AnonymousOwnerPrefix = "anon_"

// AnonymousOwnerID builds an anonymous owner from a raw unique value.
func AnonymousOwnerID(raw string) OwnerID {
	return OwnerID(AnonymousOwnerPrefix + raw)
}

func (o OwnerID) IsAnonymous() bool {
	return strings.HasPrefix(string(o), AnonymousOwnerPrefix)
}

func (o OwnerID) String() string {
	return string(o)
}
