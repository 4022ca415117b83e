// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package smooth resolves Unknown entries from their neighbors and merges
// same-speaker runs into segments.
package smooth

import (
	"github.com/pdiddy/transcript-screen/pkg/types"
)

// Fill returns a copy of entries where each Unknown entry takes the nearest
// preceding known speaker, or failing that the nearest following one.
// Filled entries are marked uncertain. Entries on a page with no known
// speaker stay Unknown.
func Fill(entries []types.ClassifiedEntry) []types.ClassifiedEntry {
	out := make([]types.ClassifiedEntry, len(entries))
	copy(out, entries)

	var last types.Speaker
	for i := range out {
		switch {
		case out[i].Speaker.Known():
			last = out[i].Speaker
		case last != "":
			out[i].Speaker = last
			out[i].Uncertain = true
		}
	}

	var next types.Speaker
	for i := len(out) - 1; i >= 0; i-- {
		switch {
		case out[i].Speaker.Known():
			next = out[i].Speaker
		case next != "":
			out[i].Speaker = next
			out[i].Uncertain = true
		}
	}
	return out
}

// Merge drops entries with empty text and joins adjacent same-speaker
// entries with a single space. A segment is uncertain if any member was.
func Merge(entries []types.ClassifiedEntry) []types.Segment {
	var segs []types.Segment
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].Speaker == e.Speaker {
			segs[n-1].Text += " " + e.Text
			segs[n-1].Uncertain = segs[n-1].Uncertain || e.Uncertain
			continue
		}
		segs = append(segs, types.Segment{Speaker: e.Speaker, Text: e.Text, Uncertain: e.Uncertain})
	}
	return segs
}

// Apply runs Fill then Merge.
func Apply(entries []types.ClassifiedEntry) []types.Segment {
	return Merge(Fill(entries))
}
