// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate reads and writes annotated transcripts: one line per
// segment tagged [AI], [STUDENT] or [UNK] (with "?" when uncertain), and
// [AI][IGNORED] for instruction block lines. Annotated files can be
// recounted with uncertainty weighting or exported as training rows.
package annotate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

const (
	// IgnoredTag prefixes instruction block lines.
	IgnoredTag = "[AI][IGNORED]"

	// FileSuffix ends every annotated file name.
	FileSuffix = "__annotated.txt"
)

var tagRE = regexp.MustCompile(`(?i)^\s*\[(AI|STUDENT|UNK)(\?)?\](\[IGNORED\])?\s*`)

// FormatSegment renders a segment as an annotated line.
func FormatSegment(seg types.Segment) string {
	q := ""
	if seg.Uncertain {
		q = "?"
	}
	return "[" + seg.Speaker.Tag() + q + "] " + seg.Text
}

// FormatIgnored renders an ignored instruction line.
func FormatIgnored(text string) string {
	return IgnoredTag + " " + strings.TrimSpace(text)
}

// Tagged is one parsed annotated line.
type Tagged struct {
	Speaker   types.Speaker
	Uncertain bool
	Ignored   bool
	Text      string
}

// ParseLine parses a leading tag. It returns false for lines without one.
func ParseLine(line string) (Tagged, bool) {
	m := tagRE.FindStringSubmatchIndex(line)
	if m == nil {
		return Tagged{}, false
	}
	t := Tagged{
		Speaker:   speakerForTag(line[m[2]:m[3]]),
		Uncertain: m[4] >= 0,
		Ignored:   m[6] >= 0,
		Text:      strings.TrimSpace(line[m[1]:]),
	}
	return t, true
}

func speakerForTag(tag string) types.Speaker {
	switch strings.ToUpper(tag) {
	case "AI":
		return types.SpeakerAI
	case "STUDENT":
		return types.SpeakerStudent
	}
	return types.SpeakerUnknown
}

// FileName returns the annotated file name for a transcript file name.
func FileName(transcript string) string {
	base := filepath.Base(transcript)
	return strings.TrimSuffix(base, filepath.Ext(base)) + FileSuffix
}

// SourceName strips the annotated suffix from an annotated file name.
func SourceName(annotated string) string {
	return strings.TrimSuffix(filepath.Base(annotated), FileSuffix)
}

// List returns the annotated files in dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading annotated directory %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), FileSuffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
