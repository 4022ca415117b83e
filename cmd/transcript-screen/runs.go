// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/transcript-screen/internal/screen"
	"github.com/pdiddy/transcript-screen/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List and compare recorded screening runs",
	Long: `Runs reads the run store written by screen. Run IDs may be abbreviated
to any unique prefix.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runRunsList,
}

func openStore() (*store.Store, error) {
	path := viper.GetString("store")
	if path == "" {
		return nil, fmt.Errorf("no run store configured (--store)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("run store %s: %w", path, err)
	}
	return store.Open(path)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-8s  %-20s  %-13s  %5s  %6s  %6s  %s\n",
		"ID", "Started", "Mode", "Files", "Review", "Failed", "Input")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-8s  %-20s  %-13s  %5d  %6d  %6d  %s\n",
			shortID(r.ID), r.StartedAt.Local().Format(time.DateTime), r.CountMode,
			r.Files, r.NeedsReview, r.Failed, r.InputDir)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// --- compare subcommand ---

var runsCompareCmd = &cobra.Command{
	Use:   "compare <run-a> <run-b>",
	Short: "Compare %Student per file between two runs",
	Long: `Compare matches the files of two runs by name and reports %Student in
each run, the absolute difference, and whether the word counts are
identical. Files are listed by descending difference, followed by the mean,
median and maximum absolute difference.`,
	Args: cobra.ExactArgs(2),
	RunE: runRunsCompare,
}

func runRunsCompare(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cmp, err := st.Compare(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	}

	top, _ := cmd.Flags().GetInt("top")
	files := cmp.Files
	if top > 0 && len(files) > top {
		files = files[:top]
	}

	fmt.Fprintf(os.Stdout, "A: %s  %s\nB: %s  %s\n\n", cmp.A.ID, cmp.A.InputDir, cmp.B.ID, cmp.B.InputDir)
	fmt.Fprintf(os.Stdout, "%-40s  %7s  %7s  %6s  %s\n", "File", "A %", "B %", "Diff", "Counts")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for _, f := range files {
		name := f.Filename
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		counts := "changed"
		switch {
		case f.Missing != "":
			counts = "only in " + otherRun(f.Missing)
		case f.SameCounts:
			counts = "same"
		}
		fmt.Fprintf(os.Stdout, "%-40s  %7s  %7s  %6s  %s\n",
			name, screen.FormatPct(f.PctA), screen.FormatPct(f.PctB), screen.FormatPct(f.AbsDiff), counts)
	}

	s := cmp.Stats
	fmt.Fprintf(os.Stdout, "\n%d files compared, %d with identical counts\n", s.Compared, s.Identical)
	if s.Compared > 0 {
		fmt.Fprintf(os.Stdout, "abs diff: mean %.2f  median %.2f  max %.1f\n", s.Mean, s.Median, s.Max)
	}
	return nil
}

// otherRun names the run that has a file the other run is missing.
func otherRun(missing string) string {
	if missing == "a" {
		return "B"
	}
	return "A"
}

func init() {
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")
	runsCompareCmd.Flags().Bool("json", false, "output the comparison as JSON")
	runsCompareCmd.Flags().Int("top", 0, "show only the N largest differences (0 = all)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsCompareCmd)

	rootCmd.AddCommand(runsCmd)
}
