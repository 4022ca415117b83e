// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

func TestDefault_Labels(t *testing.T) {
	s := Default()

	for _, l := range []string{"AI", "assistant", " Tutor ", "t", "DeepSeek"} {
		assert.True(t, s.IsAILabel(l), l)
	}
	for _, l := range []string{"Student", "user", "ME", "s"} {
		assert.True(t, s.IsStudentLabel(l), l)
	}
	assert.False(t, s.IsAILabel("Q"))
	assert.False(t, s.IsStudentLabel("A"))
	assert.False(t, s.IsAILabel("Note"))
}

func TestDefault_Patterns(t *testing.T) {
	s := Default()

	assert.True(t, s.IsBlockOpener("My answer:"))
	assert.True(t, s.IsBlockOpener("student answer"))
	assert.False(t, s.IsBlockOpener("My answer: 42"))

	loc := s.FindInlineOpener("What is 2+2? My answer: 4")
	require.NotNil(t, loc)
	assert.Equal(t, "My answer:", "What is 2+2? My answer: 4"[loc[0]:loc[1]])

	assert.True(t, s.IsInstruction("You are a tutor for calculus"))
	assert.True(t, s.IsInstruction("STEP 1: Personality Test"))
	assert.False(t, s.IsInstruction("Student: you are a star"))

	assert.True(t, s.IsPageMarker("Page 3"))
	assert.True(t, s.IsPageMarker("  --- page 12 ---"))
	assert.False(t, s.IsPageMarker("Page three"))

	rest, ok := s.HeuristicStudent("Q: why?")
	assert.True(t, ok)
	assert.Equal(t, "why?", rest)
	rest, ok = s.HeuristicAI("a - because")
	assert.True(t, ok)
	assert.Equal(t, "because", rest)
	_, ok = s.HeuristicAI("Apples")
	assert.False(t, ok)
}

func TestDefault_CharacterClasses(t *testing.T) {
	s := Default()

	for _, r := range []rune{'中', 'ひ', 'カ', '한', '㐀'} {
		assert.True(t, s.IsCJK(r), string(r))
	}
	assert.False(t, s.IsCJK('a'))

	for _, r := range []rune{'^', '+', '=', '(', '√', '≤'} {
		assert.True(t, s.IsMath(r), string(r))
	}
	assert.False(t, s.IsMath('x'))
	assert.False(t, s.IsMath('.'))
}

func TestDefault_PersonaAndIgnore(t *testing.T) {
	s := Default()

	assert.True(t, s.HasPersonaPrefix("Hello! I'm your tutor today"))
	assert.False(t, s.HasPersonaPrefix("I think so"))
	assert.True(t, s.HasIgnorePhrase("--- RULE REMINDER: stay on task"))
	assert.False(t, s.HasIgnorePhrase("a normal line"))
}

func TestCompile_InvalidPattern(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.RulesConfig
	}{
		{"bad regex", types.RulesConfig{PageMarkers: []string{"(unclosed"}}},
		{"bad range", types.RulesConfig{CJKRanges: []string{"zzzz-9FFF"}}},
		{"inverted range", types.RulesConfig{CJKRanges: []string{"9FFF-4E00"}}},
		{"missing dash", types.RulesConfig{CJKRanges: []string{"4E00"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}

func TestLoad_OverridesOnlySetLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai_labels: [Robot]\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.True(t, s.IsAILabel("robot"))
	assert.False(t, s.IsAILabel("Tutor"))
	assert.True(t, s.IsStudentLabel("Student"), "unset lists keep defaults")
	assert.True(t, s.IsMath('+'))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_markers: ['[']\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), s)
}

func TestMarshal_RoundTripsDefaults(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "ai_labels:")
	assert.Contains(t, string(data), "DeepSeek")
}
