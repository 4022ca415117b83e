// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules loads and compiles the screening rule set: speaker label
// aliases, persona and preamble prefixes, block-opener, instruction and
// page-marker patterns, CJK ranges, the math symbol set, and the recount
// ignore phrases. Rules are data; the engine packages consume a compiled
// *Set and never hard-code calibration lists.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

//go:embed rules.yaml
var defaultRules []byte

// ErrInvalidPattern is returned by Compile when a pattern or range in the
// rule configuration cannot be compiled.
var ErrInvalidPattern = errors.New("invalid rule pattern")

type runeRange struct {
	lo, hi rune
}

// Set is a compiled, read-only rule set. It is safe for concurrent use.
type Set struct {
	cfg types.RulesConfig

	aiLabels      map[string]bool
	studentLabels map[string]bool

	heuristicStudent []*regexp.Regexp
	heuristicAI      []*regexp.Regexp

	personas  []string
	preambles []string

	blockOpeners  []*regexp.Regexp
	inlineOpeners []*regexp.Regexp
	instructions  []*regexp.Regexp
	pageMarkers   []*regexp.Regexp

	cjk    []runeRange
	math   map[rune]bool
	ignore []string
}

// DefaultConfig returns the embedded default rule configuration.
func DefaultConfig() types.RulesConfig {
	var cfg types.RulesConfig
	if err := yaml.Unmarshal(defaultRules, &cfg); err != nil {
		panic(fmt.Sprintf("rules: embedded defaults: %v", err))
	}
	return cfg
}

var defaultSet = sync.OnceValue(func() *Set {
	s, err := Compile(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("rules: embedded defaults: %v", err))
	}
	return s
})

// Default returns the compiled embedded rule set.
func Default() *Set {
	return defaultSet()
}

// Load reads a YAML rules file and compiles it over the defaults. Each list
// the file sets replaces the default list; unset lists keep the default.
// An empty path returns the default set.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	var user types.RulesConfig
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	s, err := Compile(Merge(DefaultConfig(), user))
	if err != nil {
		return nil, fmt.Errorf("compiling rules %s: %w", path, err)
	}
	return s, nil
}

// Merge overlays every non-empty list of over onto base.
func Merge(base, over types.RulesConfig) types.RulesConfig {
	pick := func(b, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return b
	}
	base.AILabels = pick(base.AILabels, over.AILabels)
	base.StudentLabels = pick(base.StudentLabels, over.StudentLabels)
	base.HeuristicPrefixes.Student = pick(base.HeuristicPrefixes.Student, over.HeuristicPrefixes.Student)
	base.HeuristicPrefixes.AI = pick(base.HeuristicPrefixes.AI, over.HeuristicPrefixes.AI)
	base.PersonaPrefixes = pick(base.PersonaPrefixes, over.PersonaPrefixes)
	base.PreamblePrefixes = pick(base.PreamblePrefixes, over.PreamblePrefixes)
	base.BlockOpeners = pick(base.BlockOpeners, over.BlockOpeners)
	base.InlineOpeners = pick(base.InlineOpeners, over.InlineOpeners)
	base.InstructionMarkers = pick(base.InstructionMarkers, over.InstructionMarkers)
	base.PageMarkers = pick(base.PageMarkers, over.PageMarkers)
	base.CJKRanges = pick(base.CJKRanges, over.CJKRanges)
	base.IgnorePhrases = pick(base.IgnorePhrases, over.IgnorePhrases)
	if over.MathSymbols != "" {
		base.MathSymbols = over.MathSymbols
	}
	return base
}

// Compile validates cfg and builds a Set. Patterns are compiled
// case-insensitively.
func Compile(cfg types.RulesConfig) (*Set, error) {
	s := &Set{
		cfg:           cfg,
		aiLabels:      labelSet(cfg.AILabels),
		studentLabels: labelSet(cfg.StudentLabels),
		personas:      lowerAll(cfg.PersonaPrefixes),
		preambles:     lowerAll(cfg.PreamblePrefixes),
		ignore:        lowerAll(cfg.IgnorePhrases),
		math:          make(map[rune]bool),
	}

	var err error
	groups := []struct {
		name string
		src  []string
		dst  *[]*regexp.Regexp
	}{
		{"heuristic_prefixes.student", cfg.HeuristicPrefixes.Student, &s.heuristicStudent},
		{"heuristic_prefixes.ai", cfg.HeuristicPrefixes.AI, &s.heuristicAI},
		{"block_openers", cfg.BlockOpeners, &s.blockOpeners},
		{"inline_openers", cfg.InlineOpeners, &s.inlineOpeners},
		{"instruction_markers", cfg.InstructionMarkers, &s.instructions},
		{"page_markers", cfg.PageMarkers, &s.pageMarkers},
	}
	for _, g := range groups {
		if *g.dst, err = compileAll(g.name, g.src); err != nil {
			return nil, err
		}
	}

	for _, r := range cfg.CJKRanges {
		rr, err := parseRange(r)
		if err != nil {
			return nil, err
		}
		s.cjk = append(s.cjk, rr)
	}

	if !utf8.ValidString(cfg.MathSymbols) {
		return nil, fmt.Errorf("%w: math_symbols is not valid UTF-8", ErrInvalidPattern)
	}
	for _, r := range cfg.MathSymbols {
		s.math[r] = true
	}
	return s, nil
}

func compileAll(name string, pats []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(pats))
	for _, p := range pats {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidPattern, name, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func parseRange(s string) (runeRange, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return runeRange{}, fmt.Errorf("%w: cjk range %q: want LO-HI", ErrInvalidPattern, s)
	}
	l, err1 := strconv.ParseUint(strings.TrimPrefix(strings.ToUpper(lo), "U+"), 16, 32)
	h, err2 := strconv.ParseUint(strings.TrimPrefix(strings.ToUpper(hi), "U+"), 16, 32)
	if err1 != nil || err2 != nil || l > h || h > utf8.MaxRune {
		return runeRange{}, fmt.Errorf("%w: cjk range %q", ErrInvalidPattern, s)
	}
	return runeRange{lo: rune(l), hi: rune(h)}, nil
}

func labelSet(labels []string) map[string]bool {
	m := make(map[string]bool, len(labels))
	for _, l := range labels {
		m[strings.ToLower(strings.TrimSpace(l))] = true
	}
	return m
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Config returns the configuration the set was compiled from.
func (s *Set) Config() types.RulesConfig { return s.cfg }

// IsAILabel reports whether label (trimmed, case-insensitive) is an AI alias.
func (s *Set) IsAILabel(label string) bool {
	return s.aiLabels[strings.ToLower(strings.TrimSpace(label))]
}

// IsStudentLabel reports whether label is a Student alias.
func (s *Set) IsStudentLabel(label string) bool {
	return s.studentLabels[strings.ToLower(strings.TrimSpace(label))]
}

// HasPersonaPrefix reports whether line opens with an AI self-introduction.
func (s *Set) HasPersonaPrefix(line string) bool {
	low := strings.ToLower(line)
	for _, p := range s.personas {
		if strings.HasPrefix(low, p) {
			return true
		}
	}
	return false
}

// Preambles returns the lower-cased AI filler prefixes.
func (s *Set) Preambles() []string { return s.preambles }

// HeuristicStudent returns the remainder of line after a weak student prefix.
func (s *Set) HeuristicStudent(line string) (string, bool) {
	return cutPrefix(s.heuristicStudent, line)
}

// HeuristicAI returns the remainder of line after a weak AI prefix.
func (s *Set) HeuristicAI(line string) (string, bool) {
	return cutPrefix(s.heuristicAI, line)
}

func cutPrefix(res []*regexp.Regexp, line string) (string, bool) {
	for _, re := range res {
		if loc := re.FindStringIndex(line); loc != nil && loc[0] == 0 {
			return strings.TrimSpace(line[loc[1]:]), true
		}
	}
	return "", false
}

// IsBlockOpener reports whether line is a solitary student block opener.
func (s *Set) IsBlockOpener(line string) bool {
	return matchAny(s.blockOpeners, line)
}

// FindInlineOpener returns the byte span of the first inline block opener in
// line, or nil.
func (s *Set) FindInlineOpener(line string) []int {
	var best []int
	for _, re := range s.inlineOpeners {
		if loc := re.FindStringIndex(line); loc != nil && (best == nil || loc[0] < best[0]) {
			best = loc
		}
	}
	return best
}

// IsInstruction reports whether line matches an instruction-block marker.
func (s *Set) IsInstruction(line string) bool {
	return matchAny(s.instructions, line)
}

// IsPageMarker reports whether line is a page separator.
func (s *Set) IsPageMarker(line string) bool {
	return matchAny(s.pageMarkers, line)
}

// HasIgnorePhrase reports whether line contains a canned template phrase.
func (s *Set) HasIgnorePhrase(line string) bool {
	low := strings.ToLower(line)
	for _, p := range s.ignore {
		if strings.Contains(low, p) {
			return true
		}
	}
	return false
}

// IsCJK reports whether r falls in a configured CJK range.
func (s *Set) IsCJK(r rune) bool {
	for _, rr := range s.cjk {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// IsMath reports whether r is in the math symbol set.
func (s *Set) IsMath(r rune) bool { return s.math[r] }

func matchAny(res []*regexp.Regexp, line string) bool {
	for _, re := range res {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Marshal renders the set's configuration as YAML.
func (s *Set) Marshal() ([]byte, error) {
	return yaml.Marshal(s.cfg)
}
