// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/transcript-screen/internal/annotate"
	"github.com/pdiddy/transcript-screen/internal/report"
	"github.com/pdiddy/transcript-screen/internal/screen"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Recount hand-corrected annotated transcripts",
	Long: `Recount reads the *__annotated.txt files in --annotated after manual
correction and recomputes the totals. Uncertain [AI?] and [STUDENT?] lines
count --uncertain-weight times their words; [UNK] and untagged lines never
enter the %Student denominator; [AI][IGNORED] lines and canned template
phrases from the rules are skipped.

The result is written as a summary file (default summary_fixed.csv next to
the annotated directory).`,
	RunE: runRecount,
}

func runRecount(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("annotated")
	out, _ := cmd.Flags().GetString("out")
	weight, _ := cmd.Flags().GetFloat64("uncertain-weight")
	if out == "" {
		out = filepath.Join(filepath.Dir(filepath.Clean(dir)), "summary_fixed.csv")
	}

	set, err := loadRules()
	if err != nil {
		return err
	}
	rc, err := annotate.NewRecounter(set, nil, weight)
	if err != nil {
		return err
	}
	paths, err := annotate.List(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no *%s files in %s", annotate.FileSuffix, dir)
	}

	var (
		results []types.ScreeningResult
		failed  int
	)
	for i, path := range paths {
		res, err := rc.RecountFile(path)
		if err != nil {
			failed++
			logger.Warn("recount failed", "file", path, "err", err)
			results = append(results, types.ScreeningResult{Filename: annotate.SourceName(path), Status: types.StatusError, Error: err.Error()})
			continue
		}
		results = append(results, res)
		fmt.Fprintf(os.Stdout, "[%d/%d] %s  →  %%Student %s  (%s)\n",
			i+1, len(paths), res.Filename, screen.FormatPct(res.PctStudent), res.Status)
	}

	if err := report.WriteSummaryCSV(out, results); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nRecounted %d files into %s\n", len(paths)-failed, out)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

func init() {
	recountCmd.Flags().String("annotated", filepath.Join("out", "annotated"), "directory of annotated transcripts")
	recountCmd.Flags().String("out", "", "summary file to write (default <annotated>/../summary_fixed.csv)")
	recountCmd.Flags().Float64("uncertain-weight", annotate.DefaultUncertainWeight, "weight of uncertain lines, between 0 and 1")

	rootCmd.AddCommand(recountCmd)
}
