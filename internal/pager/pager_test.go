// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transcript-screen/internal/rules"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

func texts(pages []types.Page) [][]string {
	out := make([][]string, len(pages))
	for i, p := range pages {
		out[i] = p.Texts()
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "empty text yields one empty page",
			in:   "",
			want: [][]string{{}},
		},
		{
			name: "no markers is one page",
			in:   "AI: hi\nStudent: hello",
			want: [][]string{{"AI: hi", "Student: hello"}},
		},
		{
			name: "form feed wins over markers",
			in:   "a\nPage 2\fb",
			want: [][]string{{"a", "Page 2"}, {"b"}},
		},
		{
			name: "form feed keeps empty pages",
			in:   "a\f\fb",
			want: [][]string{{"a"}, {""}, {"b"}},
		},
		{
			name: "page markers consumed",
			in:   "Page 1\nAI: hi\n\n--- Page 2 ---\nStudent: yo\n",
			want: [][]string{{"AI: hi"}, {"Student: yo"}},
		},
		{
			name: "marker case insensitive",
			in:   "intro\nPAGE 7\nrest",
			want: [][]string{{"intro"}, {"rest"}},
		},
		{
			name: "marker pages kept when blank",
			in:   "Page 1\nPage 2\n",
			want: [][]string{{}, {}},
		},
		{
			name: "blank marker page keeps later indexes aligned",
			in:   "Page 1\n\nPage 2\nhello",
			want: [][]string{{}, {"hello"}},
		},
		{
			name: "blank text before first marker is not a page",
			in:   "\n\nPage 1\nhello",
			want: [][]string{{"hello"}},
		},
		{
			name: "marker text inside a line is content",
			in:   "see Page 2 for details",
			want: [][]string{{"see Page 2 for details"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.in, rules.Default())
			require.NotEmpty(t, got)
			for i, p := range got {
				assert.Equal(t, i+1, p.Index)
			}
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestSplit_LineNumbers(t *testing.T) {
	pages := Split("Page 1\nx\ny\nPage 2\nz", rules.Default())
	require.Len(t, pages, 2)
	assert.Equal(t, 2, pages[0].Lines[0].Number)
	assert.Equal(t, 3, pages[0].Lines[1].Number)
	assert.Equal(t, 5, pages[1].Lines[0].Number)

	pages = Split("a\nb\fc", rules.Default())
	require.Len(t, pages, 2)
	assert.Equal(t, 2, pages[1].Lines[0].Number)
}
