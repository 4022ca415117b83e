// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the transcript-screen CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/transcript-screen/internal/logging"
	"github.com/pdiddy/transcript-screen/internal/rules"
	"github.com/pdiddy/transcript-screen/internal/secrets"
	"github.com/pdiddy/transcript-screen/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	logger = slog.Default()
)

// rootCmd is the base command for the transcript-screen CLI.
var rootCmd = &cobra.Command{
	Use:   "transcript-screen",
	Short: "Estimate how much of a tutoring transcript the student wrote",
	Long: `transcript-screen attributes each line of a student/AI tutoring transcript
to a speaker, counts words per speaker, and reports the student share with a
review flag for files that need a human look.

Batch screening writes summary.csv, pages.csv, log.txt and optional
annotated transcripts. Annotated files can be hand-corrected and recounted,
exported as training data for the relabel model, and runs recorded in the
run store can be compared file by file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./transcript-screen.yaml or ~/.config/transcript-screen/transcript-screen.yaml)")
	pf.String("rules", "", "rules file overriding the embedded defaults")
	pf.String("store", "transcript-screen.db", "run store database (empty disables recording)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	viper.BindPFlag("rules", pf.Lookup("rules"))
	viper.BindPFlag("store", pf.Lookup("store"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("transcript-screen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "transcript-screen"))
		}
	}

	viper.SetEnvPrefix("TRANSCRIPT_SCREEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "reading config:", err)
		}
	}
}

// loadRules returns the effective rule set.
func loadRules() (*rules.Set, error) {
	return rules.Load(viper.GetString("rules"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
