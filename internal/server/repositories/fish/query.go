package fish

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
)

const DefaultLimit = 20

// Filter matches fish by equality; nil fields match everything.
type Filter struct {
	IsVisible   *bool
	Deleted     *bool
	OwnerUserID *models.OwnerID
}

func (f Filter) match(fish *models.Fish) bool {
	if f.IsVisible != nil && fish.IsVisible != *f.IsVisible {
		return false
	}
	if f.Deleted != nil && fish.Deleted != *f.Deleted {
		return false
	}
	if f.OwnerUserID != nil && fish.OwnerUserID != *f.OwnerUserID {
		return false
	}
	return true
}

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpvotes   SortField = "upvotes"
	SortDownvotes SortField = "downvotes"
)

// ParseSortField accepts a field name in any case; empty means createdAt.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "createdat":
		return SortCreatedAt, nil
	case "upvotes":
		return SortUpvotes, nil
	case "downvotes":
		return SortDownvotes, nil
	default:
		return "", fmt.Errorf("%w: cannot sort by %q", common.ErrorInvalidInput, s)
	}
}

// ParseDescending accepts "asc" or "desc"; empty means descending.
func ParseDescending(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return true, nil
	case "asc":
		return false, nil
	default:
		return false, fmt.Errorf("%w: order must be asc or desc, got %q", common.ErrorInvalidInput, s)
	}
}

type Sort struct {
	Field      SortField
	Descending bool
}

// Page is an offset and limit. Both are clamped to the filtered set.
type Page struct {
	Offset int
	Limit  int
}

type Query struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

// Result is one page plus the filtered count before pagination.
type Result struct {
	Items []models.Fish
	Total int
}

// List filters, sorts and paginates the fish of s. Equal sort keys keep
// insertion order in both directions, so consecutive pages never overlap.
func List(s *models.Snapshot, q Query) Result {
	matched := make([]models.Fish, 0, len(s.Fish))
	for i := range s.Fish {
		if q.Filter.match(&s.Fish[i]) {
			matched = append(matched, s.Fish[i])
		}
	}

	compare := comparator(q.Sort.Field)
	slices.SortStableFunc(matched, func(a, b models.Fish) int {
		if q.Sort.Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})

	total := len(matched)
	start := clamp(q.Page.Offset, 0, total)
	end := start + clamp(q.Page.Limit, 0, total-start)

	return Result{Items: matched[start:end:end], Total: total}
}

func comparator(field SortField) func(a, b models.Fish) int {
	switch field {
	case SortUpvotes:
		return func(a, b models.Fish) int { return cmp.Compare(a.Upvotes, b.Upvotes) }
	case SortDownvotes:
		return func(a, b models.Fish) int { return cmp.Compare(a.Downvotes, b.Downvotes) }
	default:
		return func(a, b models.Fish) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
