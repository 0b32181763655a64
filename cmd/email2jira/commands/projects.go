package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/email2jira/email2jira/internal/core/config"
	"github.com/email2jira/email2jira/internal/integrations/jira"
)

// projectsCmd represents the projects command
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Jira projects and issue types visible to the account",
	Long: `Connect to the configured Jira server and list the project keys the
account can see, plus the issue types of the configured project. Useful for
verifying credentials and project configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		runProjects()
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects() {
	ctx := context.Background()

	cfg, err := config.Load(cfgDir)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	client := jira.NewClient(jira.Config{
		Server:     cfg.Jira.Server,
		Username:   cfg.Jira.Username,
		Password:   cfg.Jira.Password,
		ProjectKey: cfg.Jira.ProjectKey,
		IssueType:  cfg.Jira.IssueType,
	})
	if err := client.Connect(ctx); err != nil {
		fmt.Printf("Error connecting to Jira server: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	keys, err := client.ProjectKeys(ctx)
	if err != nil {
		fmt.Printf("Error listing projects: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Projects:")
	for _, key := range keys {
		marker := " "
		if key == cfg.Jira.ProjectKey {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, key)
	}

	types, err := client.IssueTypes(ctx)
	if err != nil {
		fmt.Printf("Error listing issue types: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Issue types in %s:\n", cfg.Jira.ProjectKey)
	for _, name := range types {
		fmt.Printf("    %s\n", name)
	}
}
