// Package fish holds the Fish repository: pure functions that take the
// current snapshot and return the next one. They never modify their input;
// a function that changes nothing returns the snapshot it was given.
package fish

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

// NewFish is the input of Create. ID, CreatedAt and Owner are minted by the
// caller before the mutation is queued.
type NewFish struct {
	ID              string
	ImageRef        string
	Artist          string
	CreatedAt       time.Time
	NeedsModeration bool
	Owner           models.OwnerID
}

// Direction is the side of a vote.
type Direction int

const (
	Up Direction = iota + 1
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, fmt.Errorf("%w: vote must be up or down, got %q", common.ErrorInvalidInput, s)
	}
}

func Create(s *models.Snapshot, in NewFish) (*models.Snapshot, models.Fish, error) {
	switch {
	case in.ID == "":
		return s, models.Fish{}, fmt.Errorf("%w: fish id required", common.ErrorInvalidInput)
	case strings.TrimSpace(in.ImageRef) == "":
		return s, models.Fish{}, fmt.Errorf("%w: image reference required", common.ErrorInvalidInput)
	case in.Owner == "":
		return s, models.Fish{}, fmt.Errorf("%w: owner required", common.ErrorInvalidInput)
	case in.CreatedAt.IsZero():
		return s, models.Fish{}, fmt.Errorf("%w: creation time required", common.ErrorInvalidInput)
	}
	if _, ok := index(s, in.ID); ok {
		return s, models.Fish{}, fmt.Errorf("%w: fish %s", common.ErrorConflict, in.ID)
	}

	artist := strings.TrimSpace(in.Artist)
	if artist == "" {
		artist = common.DefaultArtist
	}

	f := models.Fish{
		ID:              in.ID,
		ImageRef:        in.ImageRef,
		Artist:          artist,
		CreatedAt:       in.CreatedAt.UTC(),
		IsVisible:       true,
		NeedsModeration: in.NeedsModeration,
		OwnerUserID:     in.Owner,
	}
	return s.WithFish(models.Append(s.Fish, f)), f, nil
}

// Find returns the fish with id, soft-deleted or not.
func Find(s *models.Snapshot, id string) (models.Fish, error) {
	i, ok := index(s, id)
	if !ok {
		return models.Fish{}, notFound(id)
	}
	return s.Fish[i], nil
}

// Vote adds exactly one vote to the matching counter.
func Vote(s *models.Snapshot, id string, d Direction) (*models.Snapshot, models.Fish, error) {
	return update(s, id, func(f *models.Fish) error {
		switch d {
		case Up:
			f.Upvotes++
		case Down:
			f.Downvotes++
		default:
			return fmt.Errorf("%w: unknown vote direction %d", common.ErrorInvalidInput, d)
		}
		return nil
	})
}

func SoftDelete(s *models.Snapshot, id string) (*models.Snapshot, models.Fish, error) {
	return update(s, id, func(f *models.Fish) error {
		f.Deleted = true
		return nil
	})
}

func SetVisibility(s *models.Snapshot, id string, visible bool) (*models.Snapshot, models.Fish, error) {
	return update(s, id, func(f *models.Fish) error {
		f.IsVisible = visible
		return nil
	})
}

// SetSaved pins a fish so ClearTank leaves it in the tank.
func SetSaved(s *models.Snapshot, id string, saved bool) (*models.Snapshot, models.Fish, error) {
	return update(s, id, func(f *models.Fish) error {
		f.IsSaved = saved
		return nil
	})
}

// ClearTank hides every visible, non-deleted fish that is not saved and
// reports how many were hidden.
func ClearTank(s *models.Snapshot) (*models.Snapshot, int, error) {
	var out []models.Fish
	cleared := 0
	for i, f := range s.Fish {
		if !f.IsVisible || f.Deleted || f.IsSaved {
			continue
		}
		if out == nil {
			out = make([]models.Fish, len(s.Fish))
			copy(out, s.Fish)
		}
		out[i].IsVisible = false
		cleared++
	}
	if cleared == 0 {
		return s, 0, nil
	}
	return s.WithFish(out), cleared, nil
}

// ReassignOwner moves every fish owned by from to to and reports how many
// moved.
func ReassignOwner(s *models.Snapshot, from, to models.OwnerID) (*models.Snapshot, int, error) {
	if from == "" || to == "" {
		return s, 0, fmt.Errorf("%w: owner required", common.ErrorInvalidInput)
	}
	var out []models.Fish
	moved := 0
	for i, f := range s.Fish {
		if f.OwnerUserID != from {
			continue
		}
		if out == nil {
			out = make([]models.Fish, len(s.Fish))
			copy(out, s.Fish)
		}
		out[i].OwnerUserID = to
		moved++
	}
	if moved == 0 {
		return s, 0, nil
	}
	return s.WithFish(out), moved, nil
}

// update applies fn to a copy of the fish with id. If fn leaves the fish as
// it was, s is returned unchanged.
func update(s *models.Snapshot, id string, fn func(f *models.Fish) error) (*models.Snapshot, models.Fish, error) {
	i, ok := index(s, id)
	if !ok {
		return s, models.Fish{}, notFound(id)
	}
	f := s.Fish[i]
	if err := fn(&f); err != nil {
		return s, models.Fish{}, err
	}
	if f == s.Fish[i] {
		return s, f, nil
	}
	return s.WithFish(models.Replace(s.Fish, i, f)), f, nil
}

func index(s *models.Snapshot, id string) (int, bool) {
	for i := range s.Fish {
		if s.Fish[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func notFound(id string) error {
	return fmt.Errorf("%w: fish %s", common.ErrorNotFound, id)
}
