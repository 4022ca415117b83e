package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

func TestPage(t *testing.T) {
	rec := Page(3, []types.Segment{
		{Speaker: types.SpeakerStudent, Words: 4},
		{Speaker: types.SpeakerAI, Words: 10},
		{Speaker: types.SpeakerUnknown, Words: 2},
		{Speaker: types.SpeakerStudent, Words: 1},
	})
	assert.Equal(t, types.CountRecord{Page: 3, StudentWords: 5, AIWords: 10, UnknownWords: 2}, rec)
}

func TestPctStudent(t *testing.T) {
	assert.Nil(t, PctStudent(0, 0))

	tests := []struct {
		student, ai int
		want        float64
	}{
		{1, 2, 33.3},
		{2, 1, 66.7},
		{1, 0, 100},
		{0, 5, 0},
		{1, 7, 12.5},
	}
	for _, tt := range tests {
		got := PctStudent(tt.student, tt.ai)
		require.NotNil(t, got)
		assert.InDelta(t, tt.want, *got, 1e-9)
	}
}

func TestReview(t *testing.T) {
	pct := func(v float64) *float64 { return &v }
	tests := []struct {
		name     string
		total    int
		unknown  int
		pct      *float64
		wantStat types.Status
		wantNote string
	}{
		{"zero total", 0, 5, nil, types.StatusNeedsReview, types.NoteZeroTotal},
		{"unknown share", 80, 20, pct(50), types.StatusNeedsReview, "unknown>20"},
		{"unknown at limit", 90, 10, pct(50), types.StatusOK, ""},
		{"all student", 10, 0, pct(100), types.StatusNeedsReview, types.NoteExtremePct},
		{"all ai", 10, 0, pct(0), types.StatusNeedsReview, types.NoteExtremePct},
		{"unknown wins over extreme", 10, 5, pct(100), types.StatusNeedsReview, "unknown>5"},
		{"ok", 10, 1, pct(40), types.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, note := Review(tt.total, tt.unknown, tt.pct)
			assert.Equal(t, tt.wantStat, st)
			assert.Equal(t, tt.wantNote, note)
		})
	}
}

func TestSummarize_SumsPages(t *testing.T) {
	pages := []types.CountRecord{
		{Page: 1, StudentWords: 10, AIWords: 20, UnknownWords: 1},
		{Page: 2, StudentWords: 5, AIWords: 5, UnknownWords: 0},
	}
	res := Summarize("a.txt", pages)

	assert.Equal(t, "a.txt", res.Filename)
	assert.Equal(t, 15, res.StudentWords)
	assert.Equal(t, 25, res.AIWords)
	assert.Equal(t, 1, res.UnknownWords)
	assert.Equal(t, 40, res.Total)
	require.NotNil(t, res.PctStudent)
	assert.InDelta(t, 37.5, *res.PctStudent, 1e-9)
	assert.Equal(t, types.StatusOK, res.Status)
}

func TestSummarize_UnknownNeverChangesPct(t *testing.T) {
	base := Summarize("f", []types.CountRecord{{Page: 1, StudentWords: 3, AIWords: 9}})
	inflated := Summarize("f", []types.CountRecord{{Page: 1, StudentWords: 3, AIWords: 9, UnknownWords: 500}})
	assert.Equal(t, *base.PctStudent, *inflated.PctStudent)
	assert.Equal(t, base.Total, inflated.Total)
}
