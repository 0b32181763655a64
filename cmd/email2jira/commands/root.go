// Package commands implements the email2jira CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgDir  string
	verbose bool
)

// rootCmd is the base command all subcommands attach to.
var rootCmd = &cobra.Command{
	Use:   "email2jira",
	Short: "Convert emails to Jira stories",
	Long: `Email2Jira reads unseen messages from an IMAP mailbox, parses them into
ticket drafts, and files them as Jira issues.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "Path to configuration directory (default ./config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}
