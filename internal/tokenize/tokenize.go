// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tokenize counts words in segment text across mixed scripts.
//
// The comprehensive count composes four passes, each removing what it
// counted so no span is counted twice:
//
//  1. CJK runs: a run of L ideographs, kana or hangul counts ceil(L/2).
//  2. URLs and email addresses count one each.
//  3. Math: whitespace chunks containing an operator or bracket are split
//     into alphanumeric groups and single symbols, each counting one.
//  4. Words: letters and digits with an optional apostrophe part and any
//     number of hyphenated parts.
//
// The simple count splits on whitespace and exists for calibration
// against word-processor counts.
package tokenize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/transcript-screen/internal/rules"
)

// Mode selects the counting policy.
type Mode string

const (
	ModeComprehensive Mode = "comprehensive"
	ModeSimple        Mode = "simple"
)

// ParseMode validates a mode name. Empty means ModeComprehensive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeComprehensive:
		return ModeComprehensive, nil
	case ModeSimple:
		return ModeSimple, nil
	}
	return "", fmt.Errorf("unknown count mode %q (want comprehensive or simple)", s)
}

var (
	urlRE   = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	emailRE = regexp.MustCompile(`(?i)\b[\p{L}\p{N}_.+-]+@[\p{L}\p{N}_.-]+\.[a-z]{2,}\b`)
	wordRE  = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}\p{M}]*(?:['’][\p{L}\p{N}\p{M}]+)?(?:-[\p{L}\p{N}\p{M}]+)*`)
)

// Breakdown is the per-pass contribution to a comprehensive count.
type Breakdown struct {
	CJK    int `json:"cjk" yaml:"cjk"`
	URLs   int `json:"urls" yaml:"urls"`
	Emails int `json:"emails" yaml:"emails"`
	Math   int `json:"math" yaml:"math"`
	Words  int `json:"words" yaml:"words"`
}

// Total returns the sum of all passes.
func (b Breakdown) Total() int {
	return b.CJK + b.URLs + b.Emails + b.Math + b.Words
}

// Counter counts words under a rule set and mode. It is stateless and
// safe for concurrent use.
type Counter struct {
	set  *rules.Set
	mode Mode
}

// New returns a Counter. A nil set means rules.Default(); an empty mode
// means ModeComprehensive.
func New(set *rules.Set, mode Mode) *Counter {
	if set == nil {
		set = rules.Default()
	}
	if mode == "" {
		mode = ModeComprehensive
	}
	return &Counter{set: set, mode: mode}
}

// Mode returns the counter's mode.
func (c *Counter) Mode() Mode { return c.mode }

// Count returns the number of words in text.
func (c *Counter) Count(text string) int {
	if c.mode == ModeSimple {
		return len(strings.Fields(text))
	}
	return c.Breakdown(text).Total()
}

// Breakdown returns the comprehensive count split by pass. Text with no
// letter, digit, underscore or CJK character counts zero. URLs and emails
// are removed before the math pass, so a URL containing operators such as
// "?a=1+2" counts as one token.
func (c *Counter) Breakdown(text string) Breakdown {
	var b Breakdown
	if !c.countable(text) {
		return b
	}

	var rest string
	b.CJK, rest = c.cjkRuns(text)

	b.URLs = len(urlRE.FindAllStringIndex(rest, -1))
	rest = urlRE.ReplaceAllString(rest, " ")
	b.Emails = len(emailRE.FindAllStringIndex(rest, -1))
	rest = emailRE.ReplaceAllString(rest, " ")

	b.Math, rest = c.mathChunks(rest)
	b.Words = len(wordRE.FindAllStringIndex(rest, -1))
	return b
}

func (c *Counter) countable(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || c.set.IsCJK(r) {
			return true
		}
	}
	return false
}

// cjkRuns counts maximal CJK runs and returns text with them removed.
func (c *Counter) cjkRuns(text string) (int, string) {
	var (
		count, run int
		sb         strings.Builder
	)
	for _, r := range text {
		if c.set.IsCJK(r) {
			run++
			continue
		}
		count += (run + 1) / 2
		run = 0
		sb.WriteRune(r)
	}
	count += (run + 1) / 2
	return count, sb.String()
}

// mathChunks tokenizes every whitespace chunk that carries an operator and
// returns the token total plus the text of the remaining chunks.
func (c *Counter) mathChunks(text string) (int, string) {
	if !strings.ContainsFunc(text, c.set.IsMath) {
		return 0, text
	}
	var (
		count int
		kept  []string
	)
	for _, chunk := range strings.Fields(text) {
		if !c.hasOperator(chunk) {
			kept = append(kept, chunk)
			continue
		}
		count += c.mathTokens(chunk)
	}
	return count, strings.Join(kept, " ")
}

// hasOperator reports whether chunk holds a math symbol. A hyphen between
// two letters joins a compound word and is not an operator.
func (c *Counter) hasOperator(chunk string) bool {
	rs := []rune(chunk)
	for i, r := range rs {
		if !c.set.IsMath(r) {
			continue
		}
		if r == '-' && i > 0 && i < len(rs)-1 && unicode.IsLetter(rs[i-1]) && unicode.IsLetter(rs[i+1]) {
			continue
		}
		return true
	}
	return false
}

// mathTokens splits chunk into alphanumeric groups and single math symbols.
// Other characters separate tokens without counting.
func (c *Counter) mathTokens(chunk string) int {
	n := 0
	inGroup := false
	for _, r := range chunk {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if !inGroup {
				n++
				inGroup = true
			}
		case c.set.IsMath(r):
			n++
			inGroup = false
		default:
			inGroup = false
		}
	}
	return n
}
