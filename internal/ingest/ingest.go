// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest loads transcript files as text. Plain text, Word (.docx)
// and PDF files are supported; each format has its own Extractor.
// Page breaks in .docx and PDF page boundaries become form feeds so the
// pager splits on them.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedType is returned for file extensions with no extractor.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor turns the raw bytes of one file format into text.
type Extractor interface {
	Extract(raw []byte) (string, error)
}

var extractors = map[string]Extractor{
	".txt":  textExtractor{},
	".docx": docxExtractor{},
	".pdf":  pdfExtractor{},
}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads path and extracts its text.
func Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	ex, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := ex.Extract(raw)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

// List returns the supported transcript files directly under dir, sorted
// by name. Hidden files and Word lock files (~$name.docx) are skipped.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if Supported(name) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}
