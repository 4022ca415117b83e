// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes raw transcript text before paging.
package normalize

import (
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Text applies NFC composition and rewrites CRLF and lone CR terminators
// to LF. Text(Text(s)) == Text(s).
func Text(s string) string {
	return lineEndings.Replace(norm.NFC.String(s))
}

// Decode converts raw file bytes to a string. A leading UTF-8 byte order
// mark is removed and invalid byte sequences are dropped.
func Decode(b []byte) string {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(b), "")
}
