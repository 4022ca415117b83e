// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns a provisional speaker to each line of a page.
//
// Classification is a fold over the page's lines: each Step takes the
// current State and one raw line and returns the next State plus an
// Outcome holding one or two entries. The rules are an ordered list tried
// top to bottom; the first that applies wins. Before the fold, a leading
// instruction block (system prompt boilerplate) is detected and removed
// from the lines that get classified.
package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/transcript-screen/internal/rules"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

// State is carried from one line to the next within a page.
type State struct {
	// Previous is the last known speaker (AI or Student) on the page.
	Previous types.Speaker

	// InStudentBlock is set by a solitary block opener such as "My answer:"
	// and cleared by the next explicit speaker tag.
	InStudentBlock bool
}

// Outcome is the result of classifying one line: exactly one or exactly
// two entries. Implementations are OneEntry and TwoEntries.
type Outcome interface {
	Entries() []types.ClassifiedEntry
	outcome()
}

// OneEntry is the outcome for a line attributed to a single speaker.
type OneEntry struct {
	Entry types.ClassifiedEntry
}

// TwoEntries is the outcome for a line split at an inline speaker switch.
// First precedes Second in the source line.
type TwoEntries struct {
	First, Second types.ClassifiedEntry
}

func (o OneEntry) Entries() []types.ClassifiedEntry   { return []types.ClassifiedEntry{o.Entry} }
func (o TwoEntries) Entries() []types.ClassifiedEntry { return []types.ClassifiedEntry{o.First, o.Second} }
func (OneEntry) outcome()                             {}
func (TwoEntries) outcome()                           {}

var (
	leadingJunk = regexp.MustCompile(`^[\s>*-]+`)
	explicitTag = regexp.MustCompile(`^\s*\[?([A-Za-z ]{1,20})\]?\s*[:\-]\s*(.*)$`)
)

// line is one raw row prepared for the rules: trimmed, and with leading
// quote and bullet characters removed.
type line struct {
	trimmed string
	body    string
}

func prepare(raw string) line {
	t := strings.TrimSpace(raw)
	return line{trimmed: t, body: leadingJunk.ReplaceAllString(t, "")}
}

type rule struct {
	name  string
	apply func(c *Classifier, st State, ln line) (State, Outcome, bool)
}

// Rule names, reported by Step for tracing and tests.
const (
	RuleBlank        = "blank"
	RuleBlockOpener  = "block_opener"
	RuleInlineSplit  = "inline_split"
	RuleExplicitTag  = "explicit_tag"
	RuleHeader       = "speaker_header"
	RulePersona      = "persona"
	RuleHeuristic    = "heuristic_prefix"
	RuleStudentBlock = "student_block"
	RuleContinuation = "continuation"
	RuleUnknown      = "unknown"
)

var cascade = []rule{
	{RuleBlank, blankRule},
	{RuleBlockOpener, blockOpenerRule},
	{RuleInlineSplit, inlineSplitRule},
	{RuleExplicitTag, explicitTagRule},
	{RuleHeader, headerRule},
	{RulePersona, personaRule},
	{RuleHeuristic, heuristicRule},
	{RuleStudentBlock, studentBlockRule},
	{RuleContinuation, continuationRule},
	{RuleUnknown, unknownRule},
}

func one(sp types.Speaker, text string, uncertain bool) Outcome {
	return OneEntry{Entry: types.ClassifiedEntry{Speaker: sp, Text: text, Uncertain: uncertain}}
}

func blankRule(_ *Classifier, st State, ln line) (State, Outcome, bool) {
	if ln.trimmed != "" {
		return st, nil, false
	}
	return st, one(types.SpeakerUnknown, "", false), true
}

func blockOpenerRule(c *Classifier, st State, ln line) (State, Outcome, bool) {
	if !c.set.IsBlockOpener(ln.body) {
		return st, nil, false
	}
	st.InStudentBlock = true
	return st, one(types.SpeakerStudent, "", false), true
}

func inlineSplitRule(c *Classifier, st State, ln line) (State, Outcome, bool) {
	loc := c.set.FindInlineOpener(ln.body)
	if loc == nil {
		return st, nil, false
	}
	right := strings.TrimSpace(ln.body[loc[1]:])
	if right == "" {
		return st, nil, false
	}
	student := types.ClassifiedEntry{Speaker: types.SpeakerStudent, Text: right}
	left := strings.TrimSpace(strings.TrimRight(ln.body[:loc[0]], " -*:"))
	if left == "" {
		return st, OneEntry{Entry: student}, true
	}
	ai := types.ClassifiedEntry{Speaker: types.SpeakerAI, Text: left, Uncertain: true}
	return st, TwoEntries{First: ai, Second: student}, true
}

func explicitTagRule(c *Classifier, st State, ln line) (State, Outcome, bool) {
	sp, rest, ok := c.tag(ln.body)
	if !ok {
		return st, nil, false
	}
	st.InStudentBlock = false
	if sp == types.SpeakerAI {
		rest = StripPreamble(rest, c.set.Preambles())
	}
	return st, one(sp, rest, false), true
}

// headerRule handles a line that is nothing but a speaker label, as in
// exports that put "ChatGPT said:" or "You" above each turn. The turn's
// lines then continue that speaker.
func headerRule(c *Classifier, st State, ln line) (State, Outcome, bool) {
	sp, ok := c.header(ln.body)
	if !ok {
		return st, nil, false
	}
	st.InStudentBlock = false
	return st, one(sp, "", false), true
}

func personaRule(c *Classifier, st State, ln line) (State, Outcome, bool) {
	if !c.set.HasPersonaPrefix(ln.body) {
		return st, nil, false
	}
	return st, one(types.SpeakerAI, ln.body, true), true
}

func heuristicRule(c *Classifier, st State, ln line) (State, Outcome, bool) {
	if rest, ok := c.set.HeuristicStudent(ln.body); ok {
		return st, one(types.SpeakerStudent, rest, true), true
	}
	if rest, ok := c.set.HeuristicAI(ln.body); ok {
		return st, one(types.SpeakerAI, rest, true), true
	}
	return st, nil, false
}

func studentBlockRule(_ *Classifier, st State, ln line) (State, Outcome, bool) {
	if !st.InStudentBlock || ln.body == "" {
		return st, nil, false
	}
	return st, one(types.SpeakerStudent, ln.body, true), true
}

func continuationRule(_ *Classifier, st State, ln line) (State, Outcome, bool) {
	if !st.Previous.Known() || ln.body == "" {
		return st, nil, false
	}
	return st, one(st.Previous, ln.body, true), true
}

func unknownRule(_ *Classifier, st State, ln line) (State, Outcome, bool) {
	return st, one(types.SpeakerUnknown, ln.body, true), true
}

// Classifier applies the rule cascade using a compiled rule set. It holds
// no mutable state and is safe for concurrent use.
type Classifier struct {
	set *rules.Set
}

// New returns a Classifier for set. A nil set means rules.Default().
func New(set *rules.Set) *Classifier {
	if set == nil {
		set = rules.Default()
	}
	return &Classifier{set: set}
}

// Step classifies one raw line. It returns the next state, the outcome and
// the name of the rule that fired. Every known speaker emitted becomes the
// next state's Previous.
func (c *Classifier) Step(st State, raw string) (State, Outcome, string) {
	ln := prepare(raw)
	for _, r := range cascade {
		next, out, ok := r.apply(c, st, ln)
		if !ok {
			continue
		}
		for _, e := range out.Entries() {
			if e.Speaker.Known() {
				next.Previous = e.Speaker
			}
		}
		return next, out, r.name
	}
	// unknownRule always applies.
	panic("classify: empty rule cascade")
}

// tag reports the speaker named by an explicit "Label: content" or
// "Label - content" prefix.
func (c *Classifier) tag(body string) (types.Speaker, string, bool) {
	m := explicitTag.FindStringSubmatch(body)
	if m == nil {
		return "", "", false
	}
	label, rest := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	switch {
	case c.set.IsAILabel(label):
		return types.SpeakerAI, rest, true
	case c.set.IsStudentLabel(label):
		return types.SpeakerStudent, rest, true
	}
	return "", "", false
}

var headerVerbs = []string{" said", " says", " wrote"}

// header reports the speaker when body is a whole-line label such as
// "Student", "[AI]" or "ChatGPT said:".
func (c *Classifier) header(body string) (types.Speaker, bool) {
	s := strings.TrimSpace(strings.TrimRight(body, " \t:-"))
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	lower := strings.ToLower(s)
	for _, v := range headerVerbs {
		if strings.HasSuffix(lower, v) {
			s = strings.TrimSpace(s[:len(s)-len(v)])
			break
		}
	}
	switch {
	case s == "":
		return "", false
	case c.set.IsAILabel(s):
		return types.SpeakerAI, true
	case c.set.IsStudentLabel(s):
		return types.SpeakerStudent, true
	}
	return "", false
}

// InstructionBlockEnd returns the number of leading lines that form an
// instruction block, or 0 when the page has none. Blank lines extend the
// block; the scan stops at an inline block opener, an explicit Student
// tag or header, or any line that is not an instruction marker.
func (c *Classifier) InstructionBlockEnd(lines []string) int {
	end, seen := 0, false
	for i, raw := range lines {
		ln := prepare(raw)
		if ln.trimmed == "" {
			end = i + 1
			continue
		}
		if c.set.FindInlineOpener(ln.trimmed) != nil {
			break
		}
		if sp, _, ok := c.tag(ln.body); ok && sp == types.SpeakerStudent {
			break
		}
		if sp, ok := c.header(ln.body); ok && sp == types.SpeakerStudent {
			break
		}
		if !c.set.IsInstruction(ln.trimmed) {
			break
		}
		seen = true
		end = i + 1
	}
	if !seen {
		return 0
	}
	return end
}

// PageEntries is the classification of one page.
type PageEntries struct {
	Page int

	// Ignored holds the non-blank instruction block lines. They are
	// attributed to AI but never counted.
	Ignored []types.Line

	Entries []types.ClassifiedEntry
}

// ClassifyPage detects the page's instruction block and folds the
// remaining lines through the cascade, starting from the zero State.
func (c *Classifier) ClassifyPage(page types.Page) PageEntries {
	texts := page.Texts()
	start := c.InstructionBlockEnd(texts)

	pe := PageEntries{Page: page.Index}
	for _, ln := range page.Lines[:start] {
		if strings.TrimSpace(ln.Text) != "" {
			pe.Ignored = append(pe.Ignored, ln)
		}
	}
	pe.Entries = c.Fold(texts[start:])
	return pe
}

// Fold classifies lines in order from the zero State.
func (c *Classifier) Fold(lines []string) []types.ClassifiedEntry {
	var (
		st  State
		out Outcome
	)
	entries := make([]types.ClassifiedEntry, 0, len(lines))
	for _, raw := range lines {
		st, out, _ = c.Step(st, raw)
		entries = append(entries, out.Entries()...)
	}
	return entries
}

const preambleTrim = " \t,.;:!-–—"

// StripPreamble removes filler openings such as "Sure," or "Certainly!"
// from the start of s, repeatedly, matching only on word boundaries. If s
// is nothing but preamble the result is empty.
func StripPreamble(s string, prefixes []string) string {
	for {
		stripped := false
		for _, p := range prefixes {
			if len(s) < len(p) || !strings.EqualFold(s[:len(p)], p) {
				continue
			}
			if r, _ := utf8.DecodeRuneInString(s[len(p):]); len(s) > len(p) && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				continue
			}
			s = strings.TrimLeft(s[len(p):], preambleTrim)
			stripped = true
			break
		}
		if !stripped {
			return s
		}
	}
}
