// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package screen is the per-file screening engine. ScreenText runs
// normalize, page, classify, smooth, relabel, count and aggregate in one
// synchronous pass; ScreenFiles fans independent files out over a worker
// pool.
package screen

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/pdiddy/transcript-screen/internal/aggregate"
	"github.com/pdiddy/transcript-screen/internal/annotate"
	"github.com/pdiddy/transcript-screen/internal/classify"
	"github.com/pdiddy/transcript-screen/internal/normalize"
	"github.com/pdiddy/transcript-screen/internal/pager"
	"github.com/pdiddy/transcript-screen/internal/relabel"
	"github.com/pdiddy/transcript-screen/internal/rules"
	"github.com/pdiddy/transcript-screen/internal/smooth"
	"github.com/pdiddy/transcript-screen/internal/tokenize"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

// Options configures a Screener. Zero values select the embedded rules,
// comprehensive counting, no relabeling and slog.Default().
type Options struct {
	Rules     *rules.Set
	CountMode tokenize.Mode
	Relabeler *relabel.Relabeler
	Logger    *slog.Logger
}

// Screener screens transcripts. It holds only read-only collaborators and
// is safe for concurrent use.
type Screener struct {
	rules      *rules.Set
	classifier *classify.Classifier
	counter    *tokenize.Counter
	relabeler  *relabel.Relabeler
	logger     *slog.Logger
}

// New returns a Screener for opts.
func New(opts Options) *Screener {
	set := opts.Rules
	if set == nil {
		set = rules.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Screener{
		rules:      set,
		classifier: classify.New(set),
		counter:    tokenize.New(set, opts.CountMode),
		relabeler:  opts.Relabeler,
		logger:     logger,
	}
}

// PageReport is the screening detail for one page.
type PageReport struct {
	Counts types.CountRecord

	// Ignored holds instruction block lines excluded from counting.
	Ignored []types.Line

	Segments []types.Segment
}

// Report is the full output for one transcript.
type Report struct {
	Result types.ScreeningResult
	Pages  []PageReport
}

// ScreenText screens one transcript. It never fails on text content; an
// error is returned only when a panic escapes the pipeline, so one bad
// file cannot stop a batch.
func (s *Screener) ScreenText(ctx context.Context, name, text string) (rep *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("screening panicked", "file", name, "panic", r, "stack", string(debug.Stack()))
			rep, err = nil, fmt.Errorf("screening %s: panic: %v", name, r)
		}
	}()

	pages := pager.Split(normalize.Text(text), s.rules)
	rep = &Report{Pages: make([]PageReport, 0, len(pages))}
	records := make([]types.CountRecord, 0, len(pages))

	for _, page := range pages {
		pr := s.screenPage(ctx, page)
		rep.Pages = append(rep.Pages, pr)
		records = append(records, pr.Counts)
		s.logger.Debug("page screened", "file", name, "page", page.Index,
			"segments", len(pr.Segments), "ignored", len(pr.Ignored),
			"student", pr.Counts.StudentWords, "ai", pr.Counts.AIWords, "unknown", pr.Counts.UnknownWords)
	}

	rep.Result = aggregate.Summarize(name, records)
	return rep, nil
}

func (s *Screener) screenPage(ctx context.Context, page types.Page) PageReport {
	pe := s.classifier.ClassifyPage(page)
	segs := smooth.Apply(pe.Entries)
	if n := s.relabeler.Apply(ctx, segs); n > 0 {
		s.logger.Debug("segments relabeled", "page", page.Index, "changed", n)
	}
	for i := range segs {
		segs[i].Words = s.counter.Count(segs[i].Text)
	}
	return PageReport{
		Counts:   aggregate.Page(page.Index, segs),
		Ignored:  pe.Ignored,
		Segments: segs,
	}
}

// Annotated projects the report onto audit lines: each page's ignored
// instruction lines as "[AI][IGNORED] text", then its segments as
// "[TAG] text" with a "?" after the tag when uncertain, then a blank line.
func (r *Report) Annotated() []string {
	var out []string
	for _, p := range r.Pages {
		if len(p.Ignored) > 0 {
			for _, ln := range p.Ignored {
				out = append(out, annotate.FormatIgnored(ln.Text))
			}
			out = append(out, "")
		}
		for _, seg := range p.Segments {
			out = append(out, annotate.FormatSegment(seg))
		}
		out = append(out, "")
	}
	return out
}
