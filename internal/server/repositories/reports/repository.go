// Package reports holds the append-only Report repository.
package reports

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/fish"
)

type NewReport struct {
	ID        string
	FishID    string
	Reason    string
	Context   models.ReportContext
	CreatedAt time.Time
}

// File appends a report about an existing fish. Reports are never deduplicated.
func File(s *models.Snapshot, in NewReport) (*models.Snapshot, models.Report, error) {
	reason := strings.TrimSpace(in.Reason)
	switch {
	case in.ID == "":
		return s, models.Report{}, fmt.Errorf("%w: report id required", common.ErrorInvalidInput)
	case in.FishID == "":
		return s, models.Report{}, fmt.Errorf("%w: fish id required", common.ErrorInvalidInput)
	case reason == "":
		return s, models.Report{}, fmt.Errorf("%w: reason required", common.ErrorInvalidInput)
	}
	if _, err := fish.Find(s, in.FishID); err != nil {
		return s, models.Report{}, err
	}

	ctx := in.Context
	ctx.Extra = maps.Clone(ctx.Extra)

	r := models.Report{
		ID:        in.ID,
		FishID:    in.FishID,
		Reason:    reason,
		Context:   ctx,
		CreatedAt: in.CreatedAt.UTC(),
	}
	return s.WithReports(models.Append(s.Reports, r)), r, nil
}

// List returns reports newest first, optionally only those about fishID.
func List(s *models.Snapshot, fishID string) []models.Report {
	out := make([]models.Report, 0, len(s.Reports))
	for _, r := range s.Reports {
		if fishID == "" || r.FishID == fishID {
			out = append(out, r)
		}
	}
	// Newest first; reports filed at the same instant keep reverse filing order.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b models.Report) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
