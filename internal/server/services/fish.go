package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/ids"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/fish"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/users"
	"github.com/dmitrijs2005/fishtank/internal/server/serializer"
)

// UploadInput describes a stored image. OwnerUserID is optional.
type UploadInput struct {
	ImageRef        string
	Artist          string
	NeedsModeration bool
	OwnerUserID     string
}

// FishService wraps the fish repository: every change goes through the
// serializer, listing reads the committed snapshot.
type FishService struct {
	ser      *serializer.Serializer
	log      logging.Logger
	now      func() time.Time
	newID    func() string
	newOwner func() models.OwnerID
}

func NewFishService(ser *serializer.Serializer, log logging.Logger) *FishService {
	return &FishService{
		ser:      ser,
		log:      log.With("module", "fish"),
		now:      time.Now,
		newID:    ids.NewID,
		newOwner: ids.NewAnonymousOwner,
	}
}

// Create adds a fish. Without an owner a fresh anonymous owner is minted; a
// given owner must be anonymous or an existing user.
func (s *FishService) Create(ctx context.Context, in UploadInput) (models.Fish, error) {
	owner := models.OwnerID(in.OwnerUserID)
	if owner == "" {
		owner = s.newOwner()
	}

	nf := fish.NewFish{
		ID:              s.newID(),
		ImageRef:        in.ImageRef,
		Artist:          in.Artist,
		CreatedAt:       s.now(),
		NeedsModeration: in.NeedsModeration,
		Owner:           owner,
	}
	f, err := serializer.Mutate(ctx, s.ser, "fish.create", func(cur *models.Snapshot) (*models.Snapshot, models.Fish, error) {
		if !owner.IsAnonymous() {
			if _, err := users.FindByID(cur, owner.String()); err != nil {
				return cur, models.Fish{}, fmt.Errorf("%w: unknown owner %s", common.ErrorInvalidInput, owner)
			}
		}
		return fish.Create(cur, nf)
	})
	if err != nil {
		return f, err
	}

	s.log.Info(ctx, "fish created", "fish_id", f.ID, "owner", f.OwnerUserID.String())
	return f, nil
}

func (s *FishService) Vote(ctx context.Context, fishID, direction string) (models.Fish, error) {
	d, err := fish.ParseDirection(direction)
	if err != nil {
		return models.Fish{}, err
	}
	return serializer.Mutate(ctx, s.ser, "fish.vote", func(cur *models.Snapshot) (*models.Snapshot, models.Fish, error) {
		return fish.Vote(cur, fishID, d)
	})
}

func (s *FishService) List(ctx context.Context, q fish.Query) (fish.Result, error) {
	return serializer.Read(s.ser, func(cur *models.Snapshot) (fish.Result, error) {
		return fish.List(cur, q), nil
	})
}

func (s *FishService) Get(ctx context.Context, id string) (models.Fish, error) {
	return serializer.Read(s.ser, func(cur *models.Snapshot) (models.Fish, error) {
		return fish.Find(cur, id)
	})
}

func (s *FishService) SoftDelete(ctx context.Context, id string) (models.Fish, error) {
	return s.moderate(ctx, "fish.soft_delete", func(cur *models.Snapshot) (*models.Snapshot, models.Fish, error) {
		return fish.SoftDelete(cur, id)
	})
}

func (s *FishService) SetVisibility(ctx context.Context, id string, visible bool) (models.Fish, error) {
	return s.moderate(ctx, "fish.set_visibility", func(cur *models.Snapshot) (*models.Snapshot, models.Fish, error) {
		return fish.SetVisibility(cur, id, visible)
	})
}

func (s *FishService) SetSaved(ctx context.Context, id string, saved bool) (models.Fish, error) {
	return s.moderate(ctx, "fish.set_saved", func(cur *models.Snapshot) (*models.Snapshot, models.Fish, error) {
		return fish.SetSaved(cur, id, saved)
	})
}

// ClearTank hides every visible fish that is not saved.
func (s *FishService) ClearTank(ctx context.Context) (int, error) {
	n, err := serializer.Mutate(ctx, s.ser, "fish.clear_tank", fish.ClearTank)
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "tank cleared", "cleared", n)
	return n, nil
}

func (s *FishService) moderate(ctx context.Context, name string, op func(*models.Snapshot) (*models.Snapshot, models.Fish, error)) (models.Fish, error) {
	f, err := serializer.Mutate(ctx, s.ser, name, op)
	if err != nil {
		return f, err
	}
	s.log.Info(ctx, "fish moderated", "operation", name, "fish_id", f.ID,
		"is_visible", f.IsVisible, "deleted", f.Deleted, "is_saved", f.IsSaved)
	return f, nil
}
