// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

func pct(v float64) *float64 { return &v }

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func results(pctA, pctB float64) []types.ScreeningResult {
	return []types.ScreeningResult{
		{
			Filename: "P01.txt", StudentWords: 3, AIWords: 7, Total: 10, PctStudent: pct(pctA),
			Status: types.StatusOK,
			Pages:  []types.CountRecord{{Page: 1, StudentWords: 1, AIWords: 4}, {Page: 2, StudentWords: 2, AIWords: 3}},
		},
		{
			Filename: "P02.txt", StudentWords: 1, AIWords: 1, Total: 2, PctStudent: pct(pctB),
			Status: types.StatusOK,
			Pages:  []types.CountRecord{{Page: 1, StudentWords: 1, AIWords: 1}},
		},
		{Filename: "empty.txt", Status: types.StatusNeedsReview, Note: types.NoteZeroTotal, Pages: []types.CountRecord{{Page: 1}}},
		{Filename: "bad.docx", Status: types.StatusError, Error: "not a zip"},
	}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, Run{InputDir: "in", CountMode: "comprehensive", Config: "workers: 2\n", Files: 4, NeedsReview: 1, Failed: 1}, results(30, 50))
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.False(t, run.StartedAt.IsZero())

	got, err := s.Results(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"P01.txt", "P02.txt", "bad.docx", "empty.txt"},
		[]string{got[0].Filename, got[1].Filename, got[2].Filename, got[3].Filename})

	assert.Equal(t, results(30, 50)[0], got[0])
	assert.Nil(t, got[3].PctStudent)
	assert.Equal(t, types.NoteZeroTotal, got[3].Note)
	assert.Equal(t, types.StatusError, got[2].Status)
	assert.Equal(t, "not a zip", got[2].Error)
	assert.Empty(t, got[2].Pages)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "comprehensive", runs[0].CountMode)
	assert.Equal(t, "workers: 2\n", runs[0].Config)
	assert.Equal(t, 1, runs[0].Failed)
	assert.True(t, run.StartedAt.Equal(runs[0].StartedAt))
}

func TestSaveRun_DuplicateIDRollsBack(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.SaveRun(ctx, Run{ID: "fixed"}, results(1, 2))
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, Run{ID: "fixed"}, results(3, 4))
	require.Error(t, err)

	got, err := s.Results(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, 1.0, *got[0].PctStudent)
}

func TestRuns_NewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.SaveRun(ctx, Run{ID: "older", StartedAt: base}, nil)
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, Run{ID: "newer", StartedAt: base.Add(time.Hour)}, nil)
	require.NoError(t, err)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].ID)
	assert.True(t, base.Add(time.Hour).Equal(runs[0].StartedAt))
}

func TestResolve(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for _, id := range []string{"abc123", "abd456", "ab"} {
		_, err := s.SaveRun(ctx, Run{ID: id}, nil)
		require.NoError(t, err)
	}

	tests := []struct {
		ref      string
		want     string
		notFound bool
		wantErr  bool
	}{
		{ref: "abc", want: "abc123"},
		{ref: "abd456", want: "abd456"},
		{ref: "ab", want: "ab"},
		{ref: "a", wantErr: true},
		{ref: "zzz", notFound: true, wantErr: true},
		{ref: "  ", notFound: true, wantErr: true},
		{ref: "a%", notFound: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := s.Resolve(ctx, tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				if tt.notFound {
					assert.ErrorIs(t, err, ErrRunNotFound)
				} else {
					assert.NotErrorIs(t, err, ErrRunNotFound)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestCompare(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.SaveRun(ctx, Run{ID: "run-a"}, results(30, 50))
	require.NoError(t, err)
	b := results(30, 50)
	b[0].PctStudent = pct(40)
	b[0].StudentWords = 4
	b = append(b, types.ScreeningResult{Filename: "new.txt", PctStudent: pct(10), Status: types.StatusOK})
	_, err = s.SaveRun(ctx, Run{ID: "run-b"}, b)
	require.NoError(t, err)

	cmp, err := s.Compare(ctx, "run-a", "run-b")
	require.NoError(t, err)
	assert.Equal(t, "run-a", cmp.A.ID)
	assert.Equal(t, "run-b", cmp.B.ID)

	require.Len(t, cmp.Files, 5)
	assert.Equal(t, "P01.txt", cmp.Files[0].Filename)
	assert.Equal(t, 10.0, *cmp.Files[0].AbsDiff)
	assert.False(t, cmp.Files[0].SameCounts)
	assert.Equal(t, "P02.txt", cmp.Files[1].Filename)
	assert.True(t, cmp.Files[1].SameCounts)

	assert.Equal(t, 2, cmp.Stats.Compared)
	assert.Equal(t, 3, cmp.Stats.Identical)
	assert.Equal(t, 5.0, cmp.Stats.Mean)
	assert.Equal(t, 5.0, cmp.Stats.Median)
	assert.Equal(t, 10.0, cmp.Stats.Max)

	_, err = s.Compare(ctx, "run-a", "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestCompareResults(t *testing.T) {
	a := []types.ScreeningResult{
		{Filename: "x", PctStudent: pct(10)},
		{Filename: "y", PctStudent: pct(20)},
		{Filename: "z", PctStudent: pct(30)},
		{Filename: "gone", PctStudent: pct(5)},
		{Filename: "undef"},
	}
	b := []types.ScreeningResult{
		{Filename: "x", PctStudent: pct(11)},
		{Filename: "y", PctStudent: pct(24)},
		{Filename: "z", PctStudent: pct(32.25)},
		{Filename: "undef", PctStudent: pct(1)},
	}

	files, stats := CompareResults(a, b)
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}
	assert.Equal(t, []string{"y", "z", "x", "gone", "undef"}, names)
	assert.Equal(t, "b", files[3].Missing)
	assert.Nil(t, files[4].AbsDiff)

	assert.Equal(t, 3, stats.Compared)
	assert.InDelta(t, 2.3, stats.Median, 1e-9)
	assert.InDelta(t, (1+4+2.3)/3.0, stats.Mean, 1e-9)
	assert.InDelta(t, 4.0, stats.Max, 1e-9)
}

func TestCompareResults_Empty(t *testing.T) {
	files, stats := CompareResults(nil, nil)
	assert.Empty(t, files)
	assert.Equal(t, DiffStats{}, stats)
}
