package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/ids"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/reports"
	"github.com/dmitrijs2005/fishtank/internal/server/serializer"
)

type ReportService struct {
	ser   *serializer.Serializer
	log   logging.Logger
	now   func() time.Time
	newID func() string
}

func NewReportService(ser *serializer.Serializer, log logging.Logger) *ReportService {
	return &ReportService{
		ser:   ser,
		log:   log.With("module", "reports"),
		now:   time.Now,
		newID: ids.NewID,
	}
}

func (s *ReportService) File(ctx context.Context, fishID, reason string, rc models.ReportContext) (models.Report, error) {
	in := reports.NewReport{
		ID:        s.newID(),
		FishID:    fishID,
		Reason:    reason,
		Context:   rc,
		CreatedAt: s.now(),
	}
	r, err := serializer.Mutate(ctx, s.ser, "reports.file", func(cur *models.Snapshot) (*models.Snapshot, models.Report, error) {
		return reports.File(cur, in)
	})
	if err != nil {
		return r, err
	}
	s.log.Info(ctx, "fish reported", "report_id", r.ID, "fish_id", r.FishID)
	return r, nil
}

// List returns reports newest first; an empty fishID lists all of them.
func (s *ReportService) List(ctx context.Context, fishID string) ([]models.Report, error) {
	return serializer.Read(s.ser, func(cur *models.Snapshot) ([]models.Report, error) {
		return reports.List(cur, fishID), nil
	})
}
