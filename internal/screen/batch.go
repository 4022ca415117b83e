// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package screen

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

// Loader reads a transcript file and returns its text.
type Loader func(path string) (string, error)

// FileOutcome is the result of screening one file in a batch. Exactly one
// of Report and Err is set.
type FileOutcome struct {
	Path   string
	Report *Report
	Err    error
}

// Name returns the file's base name.
func (o FileOutcome) Name() string { return filepath.Base(o.Path) }

// BatchSummary holds counts from a batch screening run.
type BatchSummary struct {
	OK          int
	NeedsReview int
	Failed      int
}

// Total returns the number of files processed.
func (s BatchSummary) Total() int {
	return s.OK + s.NeedsReview + s.Failed
}

// HasFailures reports whether any file failed to load or screen.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ScreenFiles loads and screens paths over a pool of workers (NumCPU when
// workers <= 0). Outcomes are returned in input order. A failing file is
// recorded and does not stop the others. Once ctx is cancelled, files not
// yet started fail with ctx.Err().
//
// A progress line per file is written to w in completion order.
func (s *Screener) ScreenFiles(ctx context.Context, paths []string, load Loader, workers int, w io.Writer) ([]FileOutcome, BatchSummary) {
	outcomes := make([]FileOutcome, len(paths))
	if len(paths) == 0 {
		return outcomes, BatchSummary{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(paths))

	var (
		mu   sync.Mutex
		done int
	)
	report := func(o FileOutcome) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if o.Err != nil {
			fmt.Fprintf(w, "[%d/%d] %s  failed: %v\n", done, len(paths), o.Name(), o.Err)
			return
		}
		fmt.Fprintf(w, "[%d/%d] %s  →  %%Student %s  (%s)\n",
			done, len(paths), o.Name(), FormatPct(o.Report.Result.PctStudent), o.Report.Result.Status)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = s.screenFile(ctx, paths[i], load)
				report(outcomes[i])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var sum BatchSummary
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			sum.Failed++
			s.logger.Warn("file failed", "file", o.Path, "err", o.Err)
		case o.Report.Result.Status == types.StatusNeedsReview:
			sum.NeedsReview++
		default:
			sum.OK++
		}
	}
	return outcomes, sum
}

func (s *Screener) screenFile(ctx context.Context, path string, load Loader) FileOutcome {
	out := FileOutcome{Path: path}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	text, err := load(path)
	if err != nil {
		out.Err = fmt.Errorf("loading %s: %w", filepath.Base(path), err)
		return out
	}
	out.Report, out.Err = s.ScreenText(ctx, filepath.Base(path), text)
	return out
}

// FormatPct renders a percentage with one decimal, or "" when undefined.
func FormatPct(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *p)
}
