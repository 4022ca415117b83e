// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the outputs of a screening run into a directory:
// summary.csv (one row per file), pages.csv (one row per page), log.txt,
// optional annotated/<name>__annotated.txt files, and an optional
// results.yaml with every result.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transcript-screen/internal/annotate"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

const (
	SummaryFile  = "summary.csv"
	PagesFile    = "pages.csv"
	LogFile      = "log.txt"
	ResultsFile  = "results.yaml"
	AnnotatedDir = "annotated"
)

// SummaryHeader is the column order of summary.csv.
var SummaryHeader = []string{"filename", "student_words", "ai_words", "total", "pct_student", "unknown_words", "status", "note"}

// PagesHeader is the column order of pages.csv.
var PagesHeader = []string{"filename", "page", "student_words", "ai_words", "unknown_words"}

// ErrSummaryExists is returned by Open when the output directory already
// holds a summary and overwriting was not requested.
var ErrSummaryExists = errors.New("summary already exists (use --force to overwrite)")

// Options controls what a RunWriter produces.
type Options struct {
	OutDir    string
	Annotate  bool
	WriteYAML bool
	Force     bool

	// Header lines written at the top of log.txt.
	Header []string
}

// RunWriter streams results into the run directory. It is not safe for
// concurrent use; callers record outcomes from one goroutine.
type RunWriter struct {
	opts Options

	summaryFile, pagesFile, logFile *os.File
	summary, pages                  *csv.Writer

	results []types.ScreeningResult
}

// Open creates the output directory and the CSV and log files, writing
// their headers.
func Open(opts Options) (*RunWriter, error) {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	summaryPath := filepath.Join(opts.OutDir, SummaryFile)
	if _, err := os.Stat(summaryPath); err == nil && !opts.Force {
		return nil, fmt.Errorf("%s: %w", summaryPath, ErrSummaryExists)
	}
	if opts.Annotate {
		if err := os.MkdirAll(filepath.Join(opts.OutDir, AnnotatedDir), 0o755); err != nil {
			return nil, fmt.Errorf("creating annotated directory: %w", err)
		}
	}

	w := &RunWriter{opts: opts}
	var err error
	if w.summaryFile, err = os.Create(summaryPath); err != nil {
		return nil, fmt.Errorf("creating %s: %w", SummaryFile, err)
	}
	if w.pagesFile, err = os.Create(filepath.Join(opts.OutDir, PagesFile)); err != nil {
		w.closeFiles()
		return nil, fmt.Errorf("creating %s: %w", PagesFile, err)
	}
	if w.logFile, err = os.Create(filepath.Join(opts.OutDir, LogFile)); err != nil {
		w.closeFiles()
		return nil, fmt.Errorf("creating %s: %w", LogFile, err)
	}

	w.summary = csv.NewWriter(w.summaryFile)
	w.pages = csv.NewWriter(w.pagesFile)
	w.summary.Write(SummaryHeader)
	w.pages.Write(PagesHeader)
	for _, h := range opts.Header {
		fmt.Fprintln(w.logFile, h)
	}
	fmt.Fprintln(w.logFile)
	return w, nil
}

// Record writes one screened file. annotated is written to the annotated
// directory when annotation is enabled.
func (w *RunWriter) Record(res types.ScreeningResult, annotated []string) error {
	w.results = append(w.results, res)
	if err := w.summary.Write(SummaryRow(res)); err != nil {
		return fmt.Errorf("writing summary row: %w", err)
	}
	for _, p := range res.Pages {
		row := []string{res.Filename, strconv.Itoa(p.Page), strconv.Itoa(p.StudentWords), strconv.Itoa(p.AIWords), strconv.Itoa(p.UnknownWords)}
		if err := w.pages.Write(row); err != nil {
			return fmt.Errorf("writing pages row: %w", err)
		}
	}
	fmt.Fprintf(w.logFile, "%s: %s %s\n", res.Filename, res.Status, res.Note)

	if w.opts.Annotate {
		path := filepath.Join(w.opts.OutDir, AnnotatedDir, annotate.FileName(res.Filename))
		if err := os.WriteFile(path, []byte(strings.Join(annotated, "\n")), 0o644); err != nil {
			return fmt.Errorf("writing annotated file: %w", err)
		}
	}
	return nil
}

// RecordError logs a file that could not be screened and adds an error
// row to the summary.
func (w *RunWriter) RecordError(filename string, err error) error {
	res := types.ScreeningResult{Filename: filename, Status: types.StatusError, Error: err.Error()}
	w.results = append(w.results, res)
	fmt.Fprintf(w.logFile, "ERROR %s: %v\n", filename, err)
	if werr := w.summary.Write(SummaryRow(res)); werr != nil {
		return fmt.Errorf("writing summary row: %w", werr)
	}
	return nil
}

// Close flushes the CSV files, appends the run footer to the log, writes
// results.yaml if enabled, and closes every file.
func (w *RunWriter) Close() error {
	w.summary.Flush()
	w.pages.Flush()
	fmt.Fprintf(w.logFile, "\nfinished %s: %d files\n", time.Now().Format(time.RFC3339), len(w.results))

	errs := []error{w.summary.Error(), w.pages.Error()}
	if w.opts.WriteYAML {
		errs = append(errs, WriteYAML(filepath.Join(w.opts.OutDir, ResultsFile), w.results))
	}
	errs = append(errs, w.closeFiles())
	return errors.Join(errs...)
}

func (w *RunWriter) closeFiles() error {
	var errs []error
	for _, f := range []*os.File{w.summaryFile, w.pagesFile, w.logFile} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	return errors.Join(errs...)
}

// Dir returns the output directory.
func (w *RunWriter) Dir() string { return w.opts.OutDir }

// SummaryRow renders a result in SummaryHeader order. An undefined
// percentage is an empty cell; error rows carry the message as the note.
func SummaryRow(res types.ScreeningResult) []string {
	if res.Status == types.StatusError {
		return []string{res.Filename, "", "", "", "", "", string(res.Status), res.Error}
	}
	pct := ""
	if res.PctStudent != nil {
		pct = strconv.FormatFloat(*res.PctStudent, 'f', 1, 64)
	}
	return []string{
		res.Filename,
		strconv.Itoa(res.StudentWords),
		strconv.Itoa(res.AIWords),
		strconv.Itoa(res.Total),
		pct,
		strconv.Itoa(res.UnknownWords),
		string(res.Status),
		res.Note,
	}
}

// WriteSummaryCSV writes results as a complete summary file to path.
func WriteSummaryCSV(path string, results []types.ScreeningResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	cw := csv.NewWriter(f)
	cw.Write(SummaryHeader)
	for _, r := range results {
		cw.Write(SummaryRow(r))
	}
	cw.Flush()
	return errors.Join(cw.Error(), f.Close())
}

// WriteYAML writes results as a YAML document.
func WriteYAML(path string, results []types.ScreeningResult) error {
	data, err := yaml.Marshal(struct {
		Results []types.ScreeningResult `yaml:"results"`
	}{results})
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
