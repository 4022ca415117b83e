// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

func pct(v float64) *float64 { return &v }

func sampleResult() types.ScreeningResult {
	return types.ScreeningResult{
		Filename:     "P01.txt",
		Pages:        []types.CountRecord{{Page: 1, StudentWords: 3, AIWords: 7}, {Page: 2, StudentWords: 1, AIWords: 1, UnknownWords: 2}},
		StudentWords: 4,
		AIWords:      8,
		UnknownWords: 2,
		Total:        12,
		PctStudent:   pct(33.3),
		Status:       types.StatusNeedsReview,
		Note:         "unknown>2",
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRunWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	w, err := Open(Options{OutDir: dir, Annotate: true, WriteYAML: true, Header: []string{"run abc"}})
	require.NoError(t, err)

	require.NoError(t, w.Record(sampleResult(), []string{"[AI] hello", "[STUDENT?] hi", ""}))
	require.NoError(t, w.RecordError("bad.docx", errors.New("open docx zip: not a zip")))
	require.NoError(t, w.Close())

	assert.Equal(t,
		"filename,student_words,ai_words,total,pct_student,unknown_words,status,note\n"+
			"P01.txt,4,8,12,33.3,2,needs_review,unknown>2\n"+
			"bad.docx,,,,,,error,open docx zip: not a zip\n",
		read(t, filepath.Join(dir, SummaryFile)))

	assert.Equal(t,
		"filename,page,student_words,ai_words,unknown_words\n"+
			"P01.txt,1,3,7,0\n"+
			"P01.txt,2,1,1,2\n",
		read(t, filepath.Join(dir, PagesFile)))

	assert.Equal(t, "[AI] hello\n[STUDENT?] hi\n", read(t, filepath.Join(dir, AnnotatedDir, "P01__annotated.txt")))

	log := read(t, filepath.Join(dir, LogFile))
	assert.Contains(t, log, "run abc")
	assert.Contains(t, log, "ERROR bad.docx: open docx zip")

	var doc struct {
		Results []types.ScreeningResult `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(read(t, filepath.Join(dir, ResultsFile))), &doc))
	require.Len(t, doc.Results, 2)
	assert.Equal(t, sampleResult(), doc.Results[0])
	assert.Equal(t, types.StatusError, doc.Results[1].Status)
}

func TestOpen_RefusesExistingSummary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SummaryFile), []byte("old"), 0o644))

	_, err := Open(Options{OutDir: dir})
	assert.ErrorIs(t, err, ErrSummaryExists)

	w, err := Open(Options{OutDir: dir, Force: true})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NotContains(t, read(t, filepath.Join(dir, SummaryFile)), "old")
}

func TestOpen_NoAnnotatedDirUnlessRequested(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(Options{OutDir: dir})
	require.NoError(t, err)
	require.NoError(t, w.Record(sampleResult(), []string{"[AI] x"}))
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(dir, AnnotatedDir))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, ResultsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestSummaryRow_UndefinedPct(t *testing.T) {
	row := SummaryRow(types.ScreeningResult{Filename: "e.txt", Status: types.StatusNeedsReview, Note: types.NoteZeroTotal})
	assert.Equal(t, []string{"e.txt", "0", "0", "0", "", "0", "needs_review", "zero_total"}, row)
}

func TestWriteSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_fixed.csv")
	require.NoError(t, WriteSummaryCSV(path, []types.ScreeningResult{sampleResult()}))
	assert.Equal(t,
		"filename,student_words,ai_words,total,pct_student,unknown_words,status,note\n"+
			"P01.txt,4,8,12,33.3,2,needs_review,unknown>2\n",
		read(t, path))
}
