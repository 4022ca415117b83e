package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the screening rules",
}

var rulesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective rule set as YAML",
	Long: `Dump prints the rule set that screening would use: the embedded defaults
with any lists from --rules replacing their defaults. The output is a valid
rules file and can be edited and passed back with --rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadRules()
		if err != nil {
			return err
		}
		data, err := set.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rulesCmd.AddCommand(rulesDumpCmd)
	rootCmd.AddCommand(rulesCmd)
}
