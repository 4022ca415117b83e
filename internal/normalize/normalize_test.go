package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb", "a\nb"},
		{"lone cr", "a\rb\r", "a\nb\n"},
		{"mixed", "a\r\n\rb\n", "a\n\nb\n"},
		{"decomposed e acute", "cafe\u0301", "caf\u00e9"},
		{"hangul jamo", "\u1100\u1161", "\uac00"},
		{"form feed kept", "a\fb", "a\fb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"Student: café\r\nAI: 中文\r",
		"\u1100\u1161 hangul jamo",
		"plain text\n\nPage 2\n",
	}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once))
	}
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "hello", Decode([]byte("\xef\xbb\xbfhello")))
	assert.Equal(t, "hllo", Decode([]byte("h\xffllo")))
	assert.Equal(t, "", Decode(nil))
}
