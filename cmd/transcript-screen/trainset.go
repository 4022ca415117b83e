// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transcript-screen/internal/annotate"
)

var trainsetCmd = &cobra.Command{
	Use:   "trainset",
	Short: "Export labeled lines from annotated transcripts as CSV",
	Long: `Trainset collects every tagged line of the annotated transcripts into a
CSV with columns filename,line_idx,label,text,uncertain. The file is the
training input for a relabel model. [UNK] lines are left out unless
--include-unknown is set.`,
	RunE: runTrainset,
}

func runTrainset(cmd *cobra.Command, args []string) (err error) {
	dir, _ := cmd.Flags().GetString("annotated")
	out, _ := cmd.Flags().GetString("out")
	includeUnknown, _ := cmd.Flags().GetBool("include-unknown")

	paths, err := annotate.List(dir)
	if err != nil {
		return err
	}

	var rows []annotate.TrainingRow
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		r, err := annotate.TrainingRows(filepath.Base(path), f, includeUnknown)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		rows = append(rows, r...)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	if err := annotate.WriteTrainingCSV(f, rows); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d rows from %d files to %s\n", len(rows), len(paths), out)
	return nil
}

func init() {
	trainsetCmd.Flags().String("annotated", filepath.Join("out", "annotated"), "directory of annotated transcripts")
	trainsetCmd.Flags().String("out", "train_lines.csv", "CSV file to write")
	trainsetCmd.Flags().Bool("include-unknown", false, "keep [UNK] lines")

	rootCmd.AddCommand(trainsetCmd)
}
