package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/email2jira/email2jira/internal/ci"
	"github.com/email2jira/email2jira/internal/core/config"
	"github.com/email2jira/email2jira/internal/core/pipeline"
	"github.com/email2jira/email2jira/internal/integrations/imap"
	"github.com/email2jira/email2jira/internal/integrations/jira"
	"github.com/email2jira/email2jira/internal/parser"
	"github.com/email2jira/email2jira/internal/steps"
	"github.com/email2jira/email2jira/internal/tui"
)

var (
	runMaxEmails int
	runDryRun    bool
	runWorkflow  string
	runMailbox   string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch unseen emails and convert them to Jira tickets",
	Long: `Run the Email2Jira pipeline once: connect to the configured IMAP
mailbox, fetch unseen messages, and process each through the workflow.
In dry-run mode no Jira issues are created; the pipeline logs what it would do.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPipeline()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runMaxEmails, "max-emails", 0, "Maximum number of emails to process (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Dry run mode (don't create Jira issues)")
	runCmd.Flags().StringVar(&runWorkflow, "workflow", "ticket", "Workflow preset to run (ticket, preview)")
	runCmd.Flags().StringVar(&runMailbox, "mailbox", "", "Mailbox to read from (override)")
}

func runPipeline() {
	ctx := context.Background()

	cfg, err := config.Load(cfgDir)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	conv, err := parser.New(parser.Options{
		SubjectPrefix:    cfg.Parser.SubjectPrefix,
		DefaultIssueType: cfg.Parser.DefaultIssueType,
		DefaultPriority:  cfg.Parser.DefaultPriority,
		CustomPatterns:   cfg.Parser.CustomPatterns,
		FieldMappings:    cfg.Parser.FieldMappings,
	})
	if err != nil {
		fmt.Printf("Error in parser configuration: %v\n", err)
		os.Exit(1)
	}

	reader := imap.NewReader(imap.Config{
		Server:   cfg.Email.Server,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		UseSSL:   cfg.Email.SSL(),
		Mailbox:  cfg.Email.Mailbox,
	})

	log.Printf("[run] connecting to email server...")
	if err := reader.Connect(); err != nil {
		fmt.Printf("Error connecting to email server: %v\n", err)
		os.Exit(1)
	}
	defer reader.Disconnect()

	if err := reader.SelectMailbox(runMailbox); err != nil {
		fmt.Printf("Error selecting mailbox: %v\n", err)
		os.Exit(1)
	}

	maxEmails := runMaxEmails
	if maxEmails <= 0 {
		maxEmails = cfg.General.MaxEmails
	}

	log.Printf("[run] fetching up to %d unread emails...", maxEmails)
	emails, err := reader.UnreadEmails(maxEmails)
	if err != nil {
		fmt.Printf("Error retrieving unread emails: %v\n", err)
		os.Exit(1)
	}
	if len(emails) == 0 {
		fmt.Println("No unread emails found")
		return
	}
	log.Printf("[run] found %d unread emails", len(emails))

	deps := &pipeline.Dependencies{
		Converter:  conv,
		Mail:       reader,
		DryRun:     runDryRun,
		MarkAsRead: cfg.General.ShouldMarkAsRead(),
		BotAddress: cfg.Email.Username,
	}

	// Only dial Jira when issues will actually be created.
	if !runDryRun && runWorkflow != "preview" {
		log.Printf("[run] connecting to Jira server...")
		tracker := jira.NewClient(jira.Config{
			Server:     cfg.Jira.Server,
			Username:   cfg.Jira.Username,
			Password:   cfg.Jira.Password,
			ProjectKey: cfg.Jira.ProjectKey,
			IssueType:  cfg.Jira.IssueType,
		})
		if err := tracker.Connect(ctx); err != nil {
			fmt.Printf("Error connecting to Jira server: %v\n", err)
			os.Exit(1)
		}
		defer tracker.Close()
		deps.Tracker = tracker
	}

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	stepNames := pipeline.ResolveSteps(nil, runWorkflow)
	pipe, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		fmt.Printf("Error building pipeline: %v\n", err)
		os.Exit(1)
	}

	isCI := os.Getenv("CI") == "true" || ci.IsActions()
	if isCI {
		fmt.Println("[email2jira] running in CI mode (no TUI)")
		summary := processEmails(ctx, pipe, emails, cfg, nil)
		fmt.Println(summary)
		return
	}

	statusChan := make(chan tui.StatusMsg)
	model := tui.NewModel(stepNames, statusChan)
	program := tea.NewProgram(model)

	go func() {
		summary := processEmails(ctx, pipe, emails, cfg, statusChan)
		program.Send(tui.ResultMsg{Success: true, Output: summary})
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// processEmails runs each email through the pipeline. Per-email failures are
// logged and do not stop the batch.
func processEmails(ctx context.Context, pipe *pipeline.Pipeline, emails []pipeline.Email, cfg *config.Config, status chan<- tui.StatusMsg) string {
	successful := 0
	for i := range emails {
		email := &emails[i]
		pctx := pipeline.NewContext(ctx, email, cfg)

		if err := runSteps(pipe, pctx, status); err != nil {
			log.Printf("[run] error processing email %s: %v", email.ID, err)
			continue
		}
		if !pctx.Result.Skipped {
			successful++
		}
		if pctx.Result.TicketKey != "" {
			log.Printf("[run] created Jira issue: %s", pctx.Result.TicketKey)
		}
	}
	return fmt.Sprintf("Successfully processed %d out of %d emails", successful, len(emails))
}

// runSteps executes pipeline steps one at a time so progress can be reported.
func runSteps(pipe *pipeline.Pipeline, pctx *pipeline.Context, status chan<- tui.StatusMsg) error {
	for _, step := range pipe.Steps() {
		emit(status, tui.StatusMsg{Step: step.Name(), Status: "started"})
		if err := step.Run(pctx); err != nil {
			if errors.Is(err, pipeline.ErrSkipPipeline) {
				emit(status, tui.StatusMsg{Step: step.Name(), Status: "skipped", Message: pctx.Result.SkipReason})
				return nil
			}
			emit(status, tui.StatusMsg{Step: step.Name(), Status: "error", Message: err.Error()})
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
		emit(status, tui.StatusMsg{Step: step.Name(), Status: "success"})
	}
	return nil
}

func emit(status chan<- tui.StatusMsg, msg tui.StatusMsg) {
	if status != nil {
		status <- msg
	}
}
