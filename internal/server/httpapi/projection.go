package httpapi

import (
	"time"

	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/services"
)

// fishView is the wire shape of a fish. Clients read the image under any of
// Image, image or url and the creation time under CreatedAt or createdAt.
type fishView struct {
	ID              string    `json:"id"`
	Image           string    `json:"Image"`
	ImageLower      string    `json:"image"`
	URL             string    `json:"url"`
	Artist          string    `json:"artist"`
	CreatedAtUpper  time.Time `json:"CreatedAt"`
	CreatedAt       time.Time `json:"createdAt"`
	Upvotes         int64     `json:"upvotes"`
	Downvotes       int64     `json:"downvotes"`
	IsVisible       bool      `json:"isVisible"`
	Deleted         bool      `json:"deleted"`
	NeedsModeration bool      `json:"needsModeration"`
	IsSaved         bool      `json:"isSaved"`
	UserID          string    `json:"userId"`
}

func projectFish(f models.Fish) fishView {
	return fishView{
		ID:              f.ID,
		Image:           f.ImageRef,
		ImageLower:      f.ImageRef,
		URL:             f.ImageRef,
		Artist:          f.Artist,
		CreatedAtUpper:  f.CreatedAt,
		CreatedAt:       f.CreatedAt,
		Upvotes:         f.Upvotes,
		Downvotes:       f.Downvotes,
		IsVisible:       f.IsVisible,
		Deleted:         f.Deleted,
		NeedsModeration: f.NeedsModeration,
		IsSaved:         f.IsSaved,
		UserID:          f.OwnerUserID.String(),
	}
}

func projectFishList(items []models.Fish) []fishView {
	out := make([]fishView, len(items))
	for i, f := range items {
		out[i] = projectFish(f)
	}
	return out
}

// userView never carries the password hash.
type userView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
}

func projectUser(u models.User) userView {
	return userView{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, IsAdmin: u.IsAdmin}
}

type sessionView struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func projectSession(s *services.Session) sessionView {
	return sessionView{Token: s.Token, User: projectUser(s.User)}
}
