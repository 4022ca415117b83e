// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the transcript screening
// pipeline: the transcript model (pages, lines), the per-line and per-segment
// speaker attribution, and the per-file screening result.
package types

// Speaker identifies who produced a line or segment of a transcript.
type Speaker string

const (
	SpeakerAI      Speaker = "ai"
	SpeakerStudent Speaker = "student"
	SpeakerUnknown Speaker = "unknown"
)

// Known reports whether the speaker is AI or Student.
func (s Speaker) Known() bool {
	return s == SpeakerAI || s == SpeakerStudent
}

// Tag returns the upper-case label used in annotated transcripts
// (AI, STUDENT, UNK).
func (s Speaker) Tag() string {
	switch s {
	case SpeakerAI:
		return "AI"
	case SpeakerStudent:
		return "STUDENT"
	default:
		return "UNK"
	}
}

// Line is one raw text row of a transcript.
type Line struct {
	// Number is the 1-based line number within the normalized transcript.
	Number int `json:"number" yaml:"number"`

	// Text is the raw line content without the line terminator.
	Text string `json:"text" yaml:"text"`
}

// Page is an ordered run of lines belonging to one transcript section.
type Page struct {
	// Index is the 1-based page number.
	Index int `json:"index" yaml:"index"`

	Lines []Line `json:"lines" yaml:"lines"`
}

// Texts returns the raw text of every line on the page, in order.
func (p Page) Texts() []string {
	out := make([]string, len(p.Lines))
	for i, ln := range p.Lines {
		out[i] = ln.Text
	}
	return out
}

// Transcript is the normalized input for one file.
type Transcript struct {
	Name  string `json:"name" yaml:"name"`
	Pages []Page `json:"pages" yaml:"pages"`
}

// ClassifiedEntry is the provisional attribution of one line (or one half
// of a line split at an inline speaker switch).
type ClassifiedEntry struct {
	Speaker   Speaker `json:"speaker" yaml:"speaker"`
	Text      string  `json:"text" yaml:"text"`
	Uncertain bool    `json:"uncertain" yaml:"uncertain"`
}

// Segment is a maximal run of same-speaker entries after smoothing. It is
// the unit the tokenizer counts.
type Segment struct {
	Speaker   Speaker `json:"speaker" yaml:"speaker"`
	Text      string  `json:"text" yaml:"text"`
	Uncertain bool    `json:"uncertain" yaml:"uncertain"`

	// Words is the token count assigned by the tokenizer.
	Words int `json:"words" yaml:"words"`
}

// CountRecord holds the per-page word counts by speaker.
type CountRecord struct {
	Page         int `json:"page" yaml:"page"`
	StudentWords int `json:"student_words" yaml:"student_words"`
	AIWords      int `json:"ai_words" yaml:"ai_words"`
	UnknownWords int `json:"unknown_words" yaml:"unknown_words"`
}

// Status is the review flag assigned to a screened file.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNeedsReview Status = "needs_review"
	StatusError       Status = "error"
)

// Review notes recorded alongside StatusNeedsReview.
const (
	NoteZeroTotal  = "zero_total"
	NoteExtremePct = "extreme_pct"

	// NoteUnknownPrefix is followed by the unknown word count, e.g. "unknown>42".
	NoteUnknownPrefix = "unknown>"
)

// ScreeningResult is the final per-file output of the screener.
type ScreeningResult struct {
	Filename string        `json:"filename" yaml:"filename"`
	Pages    []CountRecord `json:"pages" yaml:"pages"`

	StudentWords int `json:"student_words" yaml:"student_words"`
	AIWords      int `json:"ai_words" yaml:"ai_words"`
	UnknownWords int `json:"unknown_words" yaml:"unknown_words"`

	// Total is StudentWords + AIWords. Unknown words are excluded.
	Total int `json:"total" yaml:"total"`

	// PctStudent is nil when Total is zero.
	PctStudent *float64 `json:"pct_student,omitempty" yaml:"pct_student,omitempty"`

	Status Status `json:"status" yaml:"status"`
	Note   string `json:"note,omitempty" yaml:"note,omitempty"`

	// Error records a per-file failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
