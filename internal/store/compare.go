// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"math"
	"sort"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

// FileDiff compares one file across two runs.
type FileDiff struct {
	Filename string

	// PctA and PctB are nil when the file is missing from that run or its
	// percentage is undefined.
	PctA, PctB *float64

	// AbsDiff is |PctB - PctA|, nil unless both are defined.
	AbsDiff *float64

	// SameCounts reports identical student, AI and unknown totals.
	SameCounts bool

	// Missing is "a" or "b" when the file exists in only one run.
	Missing string
}

// DiffStats summarizes the absolute percentage differences.
type DiffStats struct {
	Compared  int
	Identical int
	Mean      float64
	Median    float64
	Max       float64
}

// Comparison is the result of comparing two stored runs.
type Comparison struct {
	A, B  Run
	Files []FileDiff
	Stats DiffStats
}

// Compare loads two runs (by ID or unique prefix) and compares them.
func (s *Store) Compare(ctx context.Context, refA, refB string) (Comparison, error) {
	a, err := s.Resolve(ctx, refA)
	if err != nil {
		return Comparison{}, err
	}
	b, err := s.Resolve(ctx, refB)
	if err != nil {
		return Comparison{}, err
	}
	ra, err := s.Results(ctx, a.ID)
	if err != nil {
		return Comparison{}, err
	}
	rb, err := s.Results(ctx, b.ID)
	if err != nil {
		return Comparison{}, err
	}
	files, stats := CompareResults(ra, rb)
	return Comparison{A: a, B: b, Files: files, Stats: stats}, nil
}

// CompareResults matches results by filename. Files are ordered by
// descending absolute difference, then by name; files without a
// difference follow.
func CompareResults(a, b []types.ScreeningResult) ([]FileDiff, DiffStats) {
	byName := func(rs []types.ScreeningResult) map[string]types.ScreeningResult {
		m := make(map[string]types.ScreeningResult, len(rs))
		for _, r := range rs {
			m[r.Filename] = r
		}
		return m
	}
	ma, mb := byName(a), byName(b)

	names := make(map[string]bool)
	for n := range ma {
		names[n] = true
	}
	for n := range mb {
		names[n] = true
	}

	var (
		files []FileDiff
		diffs []float64
		stats DiffStats
	)
	for n := range names {
		ra, okA := ma[n]
		rb, okB := mb[n]
		d := FileDiff{Filename: n}
		switch {
		case !okA:
			d.Missing = "a"
			d.PctB = rb.PctStudent
		case !okB:
			d.Missing = "b"
			d.PctA = ra.PctStudent
		default:
			d.PctA, d.PctB = ra.PctStudent, rb.PctStudent
			d.SameCounts = ra.StudentWords == rb.StudentWords && ra.AIWords == rb.AIWords && ra.UnknownWords == rb.UnknownWords
			if d.SameCounts {
				stats.Identical++
			}
			if d.PctA != nil && d.PctB != nil {
				v := math.Round(10*math.Abs(*d.PctB-*d.PctA)) / 10
				d.AbsDiff = &v
				diffs = append(diffs, v)
			}
		}
		files = append(files, d)
	}

	sort.Slice(files, func(i, j int) bool {
		di, dj := files[i].AbsDiff, files[j].AbsDiff
		switch {
		case di != nil && dj != nil && *di != *dj:
			return *di > *dj
		case (di == nil) != (dj == nil):
			return di != nil
		}
		return files[i].Filename < files[j].Filename
	})

	stats.Compared = len(diffs)
	if len(diffs) > 0 {
		sort.Float64s(diffs)
		var sum float64
		for _, v := range diffs {
			sum += v
		}
		stats.Mean = sum / float64(len(diffs))
		stats.Max = diffs[len(diffs)-1]
		mid := len(diffs) / 2
		if len(diffs)%2 == 1 {
			stats.Median = diffs[mid]
		} else {
			stats.Median = (diffs[mid-1] + diffs[mid]) / 2
		}
	}
	return files, stats
}
