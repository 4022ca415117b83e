package smooth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

const (
	ai      = types.SpeakerAI
	student = types.SpeakerStudent
	unknown = types.SpeakerUnknown
)

func e(sp types.Speaker, text string, unc bool) types.ClassifiedEntry {
	return types.ClassifiedEntry{Speaker: sp, Text: text, Uncertain: unc}
}

func TestFill(t *testing.T) {
	tests := []struct {
		name string
		in   []types.ClassifiedEntry
		want []types.ClassifiedEntry
	}{
		{
			name: "forward and backward",
			in:   []types.ClassifiedEntry{e(unknown, "hi", false), e(ai, "hello", false), e(unknown, "ok", false)},
			want: []types.ClassifiedEntry{e(ai, "hi", true), e(ai, "hello", false), e(ai, "ok", true)},
		},
		{
			name: "forward prefers preceding speaker",
			in:   []types.ClassifiedEntry{e(student, "a", false), e(unknown, "b", true), e(ai, "c", false)},
			want: []types.ClassifiedEntry{e(student, "a", false), e(student, "b", true), e(ai, "c", false)},
		},
		{
			name: "no known speaker stays unknown",
			in:   []types.ClassifiedEntry{e(unknown, "a", true), e(unknown, "b", false)},
			want: []types.ClassifiedEntry{e(unknown, "a", true), e(unknown, "b", false)},
		},
		{
			name: "empty",
			in:   nil,
			want: []types.ClassifiedEntry{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fill(tt.in))
		})
	}
}

func TestFill_DoesNotMutateInput(t *testing.T) {
	in := []types.ClassifiedEntry{e(unknown, "x", false), e(ai, "y", false)}
	Fill(in)
	assert.Equal(t, unknown, in[0].Speaker)
}

func TestMerge(t *testing.T) {
	in := []types.ClassifiedEntry{
		e(student, "", false),
		e(student, "one", false),
		e(student, "two", true),
		e(ai, "three", false),
		e(ai, "", true),
		e(student, "four", false),
	}
	assert.Equal(t, []types.Segment{
		{Speaker: student, Text: "one two", Uncertain: true},
		{Speaker: ai, Text: "three"},
		{Speaker: student, Text: "four"},
	}, Merge(in))
}

func TestApply_ForwardBackwardExample(t *testing.T) {
	segs := Apply([]types.ClassifiedEntry{e(unknown, "hi", true), e(ai, "hello", false), e(unknown, "ok", true)})
	assert.Equal(t, []types.Segment{{Speaker: ai, Text: "hi hello ok", Uncertain: true}}, segs)
}

func TestApply_EmptyDropsBeforeMerge(t *testing.T) {
	segs := Apply([]types.ClassifiedEntry{e(ai, "a", false), e(unknown, "", false), e(ai, "b", false)})
	assert.Equal(t, []types.Segment{{Speaker: ai, Text: "a b"}}, segs)
}
