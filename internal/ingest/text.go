package ingest

import "github.com/pdiddy/transcript-screen/internal/normalize"

// textExtractor decodes UTF-8, dropping invalid bytes.
type textExtractor struct{}

func (textExtractor) Extract(raw []byte) (string, error) {
	return normalize.Decode(raw), nil
}
