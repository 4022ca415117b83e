// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/transcript-screen/internal/ingest"
	"github.com/pdiddy/transcript-screen/internal/relabel"
	"github.com/pdiddy/transcript-screen/internal/report"
	"github.com/pdiddy/transcript-screen/internal/screen"
	"github.com/pdiddy/transcript-screen/internal/secrets"
	"github.com/pdiddy/transcript-screen/internal/store"
	"github.com/pdiddy/transcript-screen/internal/tokenize"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a directory of transcripts",
	Long: `Screen reads every .txt, .docx and .pdf transcript in --input, attributes
each line to the student or the AI, counts words per speaker and writes:

  summary.csv   one row per file with totals, %Student, status and note
  pages.csv     one row per page
  log.txt       run settings and per-file status or error
  annotated/    [AI]/[STUDENT?]/[UNK] tagged transcripts (--annotate)
  results.yaml  every result with page records (--yaml)

Files that fail to load are logged and reported with status "error"; the
rest of the batch continues. The run is recorded in the run store unless
--store is empty.`,
	RunE: runScreen,
}

func screenConfig(cmd *cobra.Command) types.ScreenConfig {
	input, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("out")
	annotate, _ := cmd.Flags().GetBool("annotate")
	force, _ := cmd.Flags().GetBool("force")
	writeYAML, _ := cmd.Flags().GetBool("yaml")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")

	return types.ScreenConfig{
		InputDir:  input,
		OutDir:    out,
		RulesPath: viper.GetString("rules"),
		CountMode: viper.GetString("count_mode"),
		Workers:   viper.GetInt("workers"),
		Annotate:  annotate,
		Force:     force,
		WriteYAML: writeYAML,
		Relabel: types.RelabelConfig{
			Threshold:  viper.GetFloat64("threshold"),
			ModelPath:  viper.GetString("model"),
			RemoteURL:  viper.GetString("remote_url"),
			Timeout:    timeout,
			MaxRetries: maxRetries,
		},
	}
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg := screenConfig(cmd)
	if cfg.InputDir == "" {
		return fmt.Errorf("--input is required")
	}

	set, err := loadRules()
	if err != nil {
		return err
	}
	mode, err := tokenize.ParseMode(cfg.CountMode)
	if err != nil {
		return err
	}
	rl, err := relabel.FromConfig(cfg.Relabel, loadedSecrets.Get(secrets.RelabelAPIKey), logger)
	if err != nil {
		return err
	}

	paths, err := ingest.List(cfg.InputDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .txt, .docx or .pdf files in %s", cfg.InputDir)
	}

	started := time.Now()
	w, err := report.Open(report.Options{
		OutDir:    cfg.OutDir,
		Annotate:  cfg.Annotate,
		WriteYAML: cfg.WriteYAML,
		Force:     cfg.Force,
		Header:    runHeader(cfg, mode, rl, started),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := screen.New(screen.Options{Rules: set, CountMode: mode, Relabeler: rl, Logger: logger})
	fmt.Fprintf(os.Stdout, "Screening %d files from %s\n", len(paths), cfg.InputDir)
	outcomes, sum := s.ScreenFiles(ctx, paths, ingest.Load, cfg.Workers, os.Stdout)

	results := make([]types.ScreeningResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			if err := w.RecordError(o.Name(), o.Err); err != nil {
				w.Close()
				return err
			}
			results = append(results, types.ScreeningResult{Filename: o.Name(), Status: types.StatusError, Error: o.Err.Error()})
			continue
		}
		if err := w.Record(o.Report.Result, o.Report.Annotated()); err != nil {
			w.Close()
			return err
		}
		results = append(results, o.Report.Result)
	}
	if err := w.Close(); err != nil {
		return err
	}

	if err := recordRun(ctx, cfg, mode, started, sum, results); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nScreened %d files: %d ok, %d needs_review, %d failed\nOutputs in %s\n",
		sum.Total(), sum.OK, sum.NeedsReview, sum.Failed, w.Dir())
	if sum.HasFailures() {
		return fmt.Errorf("%d file(s) failed", sum.Failed)
	}
	return nil
}

func runHeader(cfg types.ScreenConfig, mode tokenize.Mode, rl *relabel.Relabeler, started time.Time) []string {
	relabeling := "off"
	switch {
	case rl == nil:
	case cfg.Relabel.ModelPath != "":
		relabeling = fmt.Sprintf("model %s (threshold %.2f)", cfg.Relabel.ModelPath, rl.Threshold())
	default:
		relabeling = fmt.Sprintf("remote %s (threshold %.2f)", cfg.Relabel.RemoteURL, rl.Threshold())
	}
	rulesPath := cfg.RulesPath
	if rulesPath == "" {
		rulesPath = "(embedded)"
	}
	return []string{
		fmt.Sprintf("transcript-screen %s", version),
		fmt.Sprintf("started: %s", started.Format(time.RFC3339)),
		fmt.Sprintf("input: %s", cfg.InputDir),
		fmt.Sprintf("rules: %s", rulesPath),
		fmt.Sprintf("count mode: %s", mode),
		fmt.Sprintf("relabel: %s", relabeling),
	}
}

// recordRun saves the run to the store configured by --store.
func recordRun(ctx context.Context, cfg types.ScreenConfig, mode tokenize.Mode, started time.Time, sum screen.BatchSummary, results []types.ScreeningResult) error {
	path := viper.GetString("store")
	if path == "" {
		return nil
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling run config: %w", err)
	}
	run, err := st.SaveRun(context.WithoutCancel(ctx), store.Run{
		StartedAt:   started,
		InputDir:    cfg.InputDir,
		CountMode:   string(mode),
		Config:      string(cfgYAML),
		Files:       sum.Total(),
		NeedsReview: sum.NeedsReview,
		Failed:      sum.Failed,
	}, results)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Recorded run %s in %s\n", run.ID, path)
	return nil
}

func init() {
	f := screenCmd.Flags()
	f.String("input", "", "directory of transcripts (.txt, .docx, .pdf)")
	f.String("out", "out", "output directory")
	f.Bool("annotate", false, "write annotated transcripts to <out>/annotated/")
	f.Bool("force", false, "overwrite an existing summary.csv")
	f.Bool("yaml", false, "also write results.yaml")
	f.Int("workers", 0, "files screened concurrently (0 = number of CPUs)")
	f.String("count-mode", string(tokenize.ModeComprehensive), "word counting: comprehensive or simple")
	f.String("model", "", "linear relabel model file (YAML)")
	f.String("remote-url", "", "remote relabel classifier endpoint")
	f.Float64("threshold", relabel.DefaultThreshold, "minimum probability to relabel a segment")
	f.Duration("timeout", 30*time.Second, "remote classifier request timeout")
	f.Int("max-retries", 3, "retries for throttled remote classifier requests")

	viper.BindPFlag("workers", f.Lookup("workers"))
	viper.BindPFlag("count_mode", f.Lookup("count-mode"))
	viper.BindPFlag("model", f.Lookup("model"))
	viper.BindPFlag("remote_url", f.Lookup("remote-url"))
	viper.BindPFlag("threshold", f.Lookup("threshold"))

	rootCmd.AddCommand(screenCmd)
}
