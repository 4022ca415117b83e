// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pager splits normalized transcript text into pages.
//
// Priority: form-feed characters when present, then page-marker lines
// from the rule set (consumed, never part of page content), then the
// whole text as a single page. Page indexes follow the source's breaks:
// a page is kept even when it holds only blank lines. Split never returns
// an empty slice.
package pager

import (
	"strings"

	"github.com/pdiddy/transcript-screen/internal/rules"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

// Split divides text into pages. Line numbers are 1-based positions in
// text, so annotations can point back at the source.
func Split(text string, set *rules.Set) []types.Page {
	if strings.Contains(text, "\f") {
		return splitFormFeed(text)
	}
	return splitMarkers(text, set)
}

func splitFormFeed(text string) []types.Page {
	var pages []types.Page
	lineNo := 1
	for i, chunk := range strings.Split(text, "\f") {
		rows := strings.Split(chunk, "\n")
		p := types.Page{Index: i + 1}
		for j, r := range rows {
			p.Lines = append(p.Lines, types.Line{Number: lineNo + j, Text: r})
		}
		// A form feed does not end the line it sits on.
		lineNo += len(rows) - 1
		pages = append(pages, p)
	}
	return pages
}

func splitMarkers(text string, set *rules.Set) []types.Page {
	var (
		pages  []types.Page
		cur    []types.Line
		marked bool
	)
	// A page opened by a marker is kept even when blank, so page indexes
	// follow the source's markers. Text before the first marker forms a
	// page only when it has content.
	flush := func() {
		cur = trimBlank(cur)
		if len(cur) > 0 || marked {
			pages = append(pages, types.Page{Index: len(pages) + 1, Lines: cur})
		}
		cur = nil
	}

	for i, row := range strings.Split(text, "\n") {
		if set.IsPageMarker(row) {
			flush()
			marked = true
			continue
		}
		cur = append(cur, types.Line{Number: i + 1, Text: row})
	}
	flush()

	if len(pages) == 0 {
		return []types.Page{{Index: 1}}
	}
	return pages
}

// trimBlank drops leading and trailing whitespace-only lines.
func trimBlank(lines []types.Line) []types.Line {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start].Text) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1].Text) == "" {
		end--
	}
	return lines[start:end]
}
