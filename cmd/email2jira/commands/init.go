package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/email2jira/email2jira/internal/core/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration files",
	Long: `Scaffold the configuration directory with starter email.yaml, jira.yaml,
parser.yaml and config.yaml files. Existing files are left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.CreateDefaultFiles(cfgDir); err != nil {
			fmt.Printf("Error creating configuration files: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration files created. Edit them before running 'email2jira run'.")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
