// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/transcript-screen/internal/aggregate"
	"github.com/pdiddy/transcript-screen/internal/rules"
	"github.com/pdiddy/transcript-screen/internal/tokenize"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

// DefaultUncertainWeight scales words on uncertain lines during a recount.
const DefaultUncertainWeight = 0.5

var myAnswerRE = regexp.MustCompile(`(?i)^\s*my\s+answer\s*:\s*`)

// Recounter recomputes totals from annotated files.
type Recounter struct {
	rules   *rules.Set
	counter *tokenize.Counter
	weight  float64
}

// NewRecounter returns a Recounter. Uncertain AI and Student lines count
// weight times their words; weight must be in [0, 1].
func NewRecounter(set *rules.Set, counter *tokenize.Counter, weight float64) (*Recounter, error) {
	if weight < 0 || weight > 1 || math.IsNaN(weight) {
		return nil, fmt.Errorf("uncertain weight %v out of range [0, 1]", weight)
	}
	if set == nil {
		set = rules.Default()
	}
	if counter == nil {
		counter = tokenize.New(set, tokenize.ModeComprehensive)
	}
	return &Recounter{rules: set, counter: counter, weight: weight}, nil
}

// RecountFile recounts one annotated file. The result is named after the
// source transcript.
func (r *Recounter) RecountFile(path string) (types.ScreeningResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.ScreeningResult{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return r.Recount(SourceName(path), f)
}

// Recount reads annotated lines from rd. Lines containing an ignore
// phrase and [AI][IGNORED] lines are skipped regardless of tag. Untagged
// and [UNK] lines count as unknown, which never enters the percentage
// denominator. Weighted totals are rounded to whole words.
func (r *Recounter) Recount(name string, rd io.Reader) (types.ScreeningResult, error) {
	var st, ai, unk float64
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" || r.rules.HasIgnorePhrase(line) {
			continue
		}
		tag, ok := ParseLine(line)
		if !ok {
			tag = Tagged{Speaker: types.SpeakerUnknown, Text: strings.TrimSpace(line)}
		}
		if tag.Ignored {
			continue
		}
		n := float64(r.counter.Count(myAnswerRE.ReplaceAllString(tag.Text, "")))
		if n == 0 {
			continue
		}
		w := 1.0
		if tag.Uncertain && tag.Speaker.Known() {
			w = r.weight
		}
		switch tag.Speaker {
		case types.SpeakerStudent:
			st += w * n
		case types.SpeakerAI:
			ai += w * n
		default:
			unk += n
		}
	}
	if err := sc.Err(); err != nil {
		return types.ScreeningResult{}, fmt.Errorf("reading %s: %w", name, err)
	}

	rec := types.CountRecord{
		Page:         1,
		StudentWords: int(math.Round(st)),
		AIWords:      int(math.Round(ai)),
		UnknownWords: int(math.Round(unk)),
	}
	return aggregate.Summarize(name, []types.CountRecord{rec}), nil
}
