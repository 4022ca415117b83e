// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfExtractor returns the plain text of every page, joined by form feeds.
// Pages without extractable text stay as empty pages so numbering holds.
type pdfExtractor struct{}

func (pdfExtractor) Extract(raw []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	total := r.NumPage()
	pages := make([]string, 0, total)
	found := false
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		if strings.TrimSpace(content) != "" {
			found = true
		}
		pages = append(pages, content)
	}
	if !found {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return strings.Join(pages, "\f"), nil
}
