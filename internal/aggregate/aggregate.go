// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate sums segment counts into page and file totals and
// assigns the review status.
package aggregate

import (
	"fmt"
	"math"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

// unknownShareDivisor flags a file whose unknown words exceed
// 1/unknownShareDivisor of (total + unknown).
const unknownShareDivisor = 10

// Page sums already-counted segments by speaker.
func Page(index int, segs []types.Segment) types.CountRecord {
	rec := types.CountRecord{Page: index}
	for _, s := range segs {
		switch s.Speaker {
		case types.SpeakerStudent:
			rec.StudentWords += s.Words
		case types.SpeakerAI:
			rec.AIWords += s.Words
		default:
			rec.UnknownWords += s.Words
		}
	}
	return rec
}

// PctStudent returns 100*student/(student+ai) rounded to one decimal
// place, or nil when the denominator is zero.
func PctStudent(student, ai int) *float64 {
	den := student + ai
	if den == 0 {
		return nil
	}
	pct := math.Round(1000*float64(student)/float64(den)) / 10
	return &pct
}

// Review returns the status and note for the given totals. Rules are
// checked in order: zero total, unknown share, extreme percentage.
func Review(total, unknown int, pct *float64) (types.Status, string) {
	switch {
	case total == 0:
		return types.StatusNeedsReview, types.NoteZeroTotal
	case unknownShareDivisor*unknown > total+unknown:
		return types.StatusNeedsReview, fmt.Sprintf("%s%d", types.NoteUnknownPrefix, unknown)
	case pct != nil && (*pct == 0 || *pct == 100):
		return types.StatusNeedsReview, types.NoteExtremePct
	}
	return types.StatusOK, ""
}

// Summarize builds the file result from per-page records. File totals are
// the component-wise sum of the pages.
func Summarize(filename string, pages []types.CountRecord) types.ScreeningResult {
	res := types.ScreeningResult{Filename: filename, Pages: pages}
	for _, p := range pages {
		res.StudentWords += p.StudentWords
		res.AIWords += p.AIWords
		res.UnknownWords += p.UnknownWords
	}
	res.Total = res.StudentWords + res.AIWords
	res.PctStudent = PctStudent(res.StudentWords, res.AIWords)
	res.Status, res.Note = Review(res.Total, res.UnknownWords, res.PctStudent)
	return res
}
