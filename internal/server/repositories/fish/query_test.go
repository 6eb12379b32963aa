package fish

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artists(items []models.Fish) []string {
	out := make([]string, len(items))
	for i, f := range items {
		out[i] = f.Artist
	}
	return out
}

func abc(t *testing.T) *models.Snapshot {
	t.Helper()
	s := models.EmptySnapshot()
	for i, a := range []string{"A", "B", "C"} {
		s = mustCreate(t, s, newFish(a, t0.Add(time.Duration(i)*time.Minute)))
	}
	return s
}

func TestList_NewestFirstExample(t *testing.T) {
	s := abc(t)
	sort := Sort{Field: SortCreatedAt, Descending: true}

	first := List(s, Query{Sort: sort, Page: Page{Offset: 0, Limit: 2}})
	assert.Equal(t, []string{"C", "B"}, artists(first.Items))
	assert.Equal(t, 3, first.Total)

	second := List(s, Query{Sort: sort, Page: Page{Offset: 2, Limit: 2}})
	assert.Equal(t, []string{"A"}, artists(second.Items))
	assert.Equal(t, 3, second.Total)
}

func TestList_Clamping(t *testing.T) {
	s := abc(t)
	asc := Sort{Field: SortCreatedAt}

	tests := []struct {
		name string
		page Page
		want []string
	}{
		{name: "negative offset", page: Page{Offset: -5, Limit: 1}, want: []string{"A"}},
		{name: "offset past end", page: Page{Offset: 10, Limit: 5}, want: []string{}},
		{name: "limit past end", page: Page{Offset: 1, Limit: 1 << 62}, want: []string{"B", "C"}},
		{name: "negative limit", page: Page{Offset: 0, Limit: -1}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := List(s, Query{Sort: asc, Page: tt.page})
			assert.Equal(t, tt.want, artists(res.Items))
			assert.Equal(t, 3, res.Total)
		})
	}
}

func TestList_Filter(t *testing.T) {
	s := abc(t)
	s, _, _ = SoftDelete(s, "A")
	s, _, _ = SetVisibility(s, "B", false)
	owner := s.Fish[2].OwnerUserID

	yes, no := true, false
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all", filter: Filter{}, want: []string{"A", "B", "C"}},
		{name: "not deleted", filter: Filter{Deleted: &no}, want: []string{"B", "C"}},
		{name: "visible", filter: Filter{IsVisible: &yes}, want: []string{"A", "C"}},
		{name: "visible and not deleted", filter: Filter{IsVisible: &yes, Deleted: &no}, want: []string{"C"}},
		{name: "owner", filter: Filter{OwnerUserID: &owner}, want: []string{"C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := List(s, Query{Filter: tt.filter, Sort: Sort{Field: SortCreatedAt}, Page: Page{Limit: DefaultLimit}})
			assert.Equal(t, tt.want, artists(res.Items))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestList_StableTiesInBothDirections(t *testing.T) {
	s := models.EmptySnapshot()
	for _, a := range []string{"t1", "t2", "t3", "t4"} {
		s = mustCreate(t, s, newFish(a, t0))
	}
	s, _, _ = Vote(s, "t3", Up)

	desc := List(s, Query{Sort: Sort{Field: SortUpvotes, Descending: true}, Page: Page{Limit: 10}})
	assert.Equal(t, []string{"t3", "t1", "t2", "t4"}, artists(desc.Items))

	asc := List(s, Query{Sort: Sort{Field: SortUpvotes}, Page: Page{Limit: 10}})
	assert.Equal(t, []string{"t1", "t2", "t4", "t3"}, artists(asc.Items))
}

func TestList_PagesPartitionTheFilteredSet(t *testing.T) {
	s := models.EmptySnapshot()
	for i := range 23 {
		// Only three distinct timestamps, so most keys tie.
		s = mustCreate(t, s, newFish(string(rune('a'+i)), t0.Add(time.Duration(i%3)*time.Second)))
	}
	no := false
	q := Query{Filter: Filter{Deleted: &no}, Sort: Sort{Field: SortCreatedAt, Descending: true}}

	for _, k := range []int{1, 4, 5, 23, 30} {
		seen := map[string]bool{}
		var total int
		for off := 0; off < 23; off += k {
			q.Page = Page{Offset: off, Limit: k}
			res := List(s, q)
			total = res.Total
			for _, f := range res.Items {
				assert.False(t, seen[f.ID], "k=%d duplicate %s", k, f.ID)
				seen[f.ID] = true
			}
		}
		assert.Len(t, seen, total, "k=%d", k)
	}
}

func TestList_DoesNotAliasSnapshot(t *testing.T) {
	s := abc(t)
	res := List(s, Query{Sort: Sort{Field: SortCreatedAt}, Page: Page{Limit: 3}})
	res.Items[0].Artist = "mutated"
	assert.Equal(t, "A", s.Fish[0].Artist)
}

func TestParseSortField(t *testing.T) {
	for in, want := range map[string]SortField{
		"":          SortCreatedAt,
		"CreatedAt": SortCreatedAt,
		"createdAt": SortCreatedAt,
		"UPVOTES":   SortUpvotes,
		"downvotes": SortDownvotes,
	} {
		got, err := ParseSortField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortField("artist")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestParseDescending(t *testing.T) {
	d, err := ParseDescending("")
	require.NoError(t, err)
	assert.True(t, d)

	d, err = ParseDescending("ASC")
	require.NoError(t, err)
	assert.False(t, d)

	_, err = ParseDescending("random")
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}
