package reports

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/fish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func withFish(t *testing.T, ids ...string) *models.Snapshot {
	t.Helper()
	s := models.EmptySnapshot()
	for _, id := range ids {
		var err error
		s, _, err = fish.Create(s, fish.NewFish{ID: id, ImageRef: "/uploads/" + id, CreatedAt: t0, Owner: "o"})
		require.NoError(t, err)
	}
	return s
}

func TestFile(t *testing.T) {
	s := withFish(t, "f1")
	extra := map[string]string{"screen": "1080p"}

	next, r, err := File(s, NewReport{
		ID: "r1", FishID: "f1", Reason: "  spam ", CreatedAt: t0,
		Context: models.ReportContext{UserAgent: "curl/8", URL: "/tank", Extra: extra},
	})
	require.NoError(t, err)

	assert.Equal(t, "spam", r.Reason)
	assert.Equal(t, "curl/8", r.Context.UserAgent)
	assert.Empty(t, s.Reports)
	require.Len(t, next.Reports, 1)

	extra["screen"] = "changed"
	assert.Equal(t, "1080p", next.Reports[0].Context.Extra["screen"], "context must be copied")
}

func TestFile_DuplicatesAreAppended(t *testing.T) {
	s := withFish(t, "f1")
	for _, id := range []string{"r1", "r2"} {
		var err error
		s, _, err = File(s, NewReport{ID: id, FishID: "f1", Reason: "spam", CreatedAt: t0})
		require.NoError(t, err)
	}
	assert.Len(t, s.Reports, 2)
}

func TestFile_Errors(t *testing.T) {
	s := withFish(t, "f1")

	tests := []struct {
		name    string
		in      NewReport
		wantErr error
	}{
		{name: "unknown fish", in: NewReport{ID: "r", FishID: "nope", Reason: "x"}, wantErr: common.ErrorNotFound},
		{name: "blank reason", in: NewReport{ID: "r", FishID: "f1", Reason: "  "}, wantErr: common.ErrorInvalidInput},
		{name: "no fish id", in: NewReport{ID: "r", Reason: "x"}, wantErr: common.ErrorInvalidInput},
		{name: "no id", in: NewReport{FishID: "f1", Reason: "x"}, wantErr: common.ErrorInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := File(s, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Same(t, s, next)
		})
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := withFish(t, "f1", "f2")
	for i, fid := range []string{"f1", "f2", "f1"} {
		var err error
		s, _, err = File(s, NewReport{
			ID: string(rune('a' + i)), FishID: fid, Reason: "x",
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	s, _, _ = File(s, NewReport{ID: "d", FishID: "f2", Reason: "x", CreatedAt: t0.Add(2 * time.Minute)})

	ids := func(rs []models.Report) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(List(s, "")))
	assert.Equal(t, []string{"c", "a"}, ids(List(s, "f1")))
	assert.Empty(t, List(s, "f9"))
}
