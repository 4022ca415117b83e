package annotate

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

// TrainingRow is one labeled line for training a relabel model.
type TrainingRow struct {
	Filename  string
	LineIdx   int
	Label     string
	Text      string
	Uncertain bool
}

// TrainingRows extracts labeled lines from an annotated file. Ignored,
// untagged and empty lines are dropped, and so are [UNK] lines unless
// includeUnknown is set. LineIdx is 1-based.
func TrainingRows(filename string, rd io.Reader, includeUnknown bool) ([]TrainingRow, error) {
	var rows []TrainingRow
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for i := 1; sc.Scan(); i++ {
		tag, ok := ParseLine(sc.Text())
		if !ok || tag.Ignored || tag.Text == "" {
			continue
		}
		if tag.Speaker == types.SpeakerUnknown && !includeUnknown {
			continue
		}
		rows = append(rows, TrainingRow{
			Filename:  filename,
			LineIdx:   i,
			Label:     tag.Speaker.Tag(),
			Text:      tag.Text,
			Uncertain: tag.Uncertain,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return rows, nil
}

// WriteTrainingCSV writes rows with the header
// filename,line_idx,label,text,uncertain.
func WriteTrainingCSV(w io.Writer, rows []TrainingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"filename", "line_idx", "label", "text", "uncertain"}); err != nil {
		return err
	}
	for _, r := range rows {
		unc := "0"
		if r.Uncertain {
			unc = "1"
		}
		if err := cw.Write([]string{r.Filename, strconv.Itoa(r.LineIdx), r.Label, r.Text, unc}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
