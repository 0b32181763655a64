package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/email2jira/email2jira/internal/core/config"
	"github.com/email2jira/email2jira/internal/core/pipeline"
	"github.com/email2jira/email2jira/internal/parser"
	"github.com/email2jira/email2jira/internal/steps"
)

// memMailbox records MarkRead calls so the test can verify the pipeline
// reached the final step.
type memMailbox struct {
	mu     sync.Mutex
	marked []string
}

func (m *memMailbox) MarkRead(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, id)
	return nil
}

func TestEndToEndTicketPipeline(t *testing.T) {
	cfg := &config.Config{
		Parser: config.ParserConfig{
			SubjectPrefix:    "[Email]",
			DefaultIssueType: "Story",
			DefaultPriority:  "Medium",
		},
	}

	conv, err := parser.New(parser.Options{
		SubjectPrefix:    cfg.Parser.SubjectPrefix,
		DefaultIssueType: cfg.Parser.DefaultIssueType,
		DefaultPriority:  cfg.Parser.DefaultPriority,
	})
	if err != nil {
		t.Fatalf("Failed to build parser: %v", err)
	}

	mail := &memMailbox{}
	deps := &pipeline.Dependencies{
		Converter:  conv,
		Mail:       mail,
		DryRun:     true,
		MarkAsRead: true,
		BotAddress: "bot@example.com",
	}

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	stepNames := pipeline.ResolveSteps(nil, "ticket")
	p, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		t.Fatalf("Failed to build pipeline: %v", err)
	}

	email := &pipeline.Email{
		ID:      "42",
		Subject: "Login page broken",
		Sender:  "Reporter <reporter@example.com>",
		Date:    time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		Body:    "Steps to reproduce below.\n\nPriority: High\nLabels: login-flow",
	}

	pCtx := pipeline.NewContext(context.Background(), email, cfg)

	start := time.Now()
	if err := p.Run(pCtx); err != nil {
		t.Fatalf("Pipeline execution failed: %v", err)
	}
	t.Logf("Pipeline passed in %v", time.Since(start))

	if pCtx.Result.Skipped {
		t.Fatalf("Pipeline unexpectedly skipped: %s", pCtx.Result.SkipReason)
	}
	if pCtx.Ticket == nil {
		t.Fatal("Expected a ticket draft after the parse step")
	}
	if pCtx.Ticket.Summary != "[Email] Login page broken" {
		t.Errorf("Unexpected summary: %q", pCtx.Ticket.Summary)
	}
	if pCtx.Ticket.Priority != "High" {
		t.Errorf("Expected extracted priority High, got %q", pCtx.Ticket.Priority)
	}
	// Dry-run mode must not report a created issue key.
	if pCtx.Result.TicketKey != "" {
		t.Errorf("Expected no ticket key in dry-run, got %q", pCtx.Result.TicketKey)
	}
	if len(mail.marked) != 1 || mail.marked[0] != "42" {
		t.Errorf("Expected email 42 marked read, got %v", mail.marked)
	}
}

func TestEndToEndBotLoopIsBroken(t *testing.T) {
	conv, err := parser.New(parser.Options{})
	if err != nil {
		t.Fatalf("Failed to build parser: %v", err)
	}

	deps := &pipeline.Dependencies{
		Converter:  conv,
		DryRun:     true,
		BotAddress: "bot@example.com",
	}

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	p, err := registry.BuildFromNames(pipeline.ResolveSteps(nil, "ticket"), deps)
	if err != nil {
		t.Fatalf("Failed to build pipeline: %v", err)
	}

	email := &pipeline.Email{
		ID:      "7",
		Subject: "[JIRA] Ticket created",
		Sender:  "Email2Jira <bot@example.com>",
		Body:    "Automated notification.",
	}

	pCtx := pipeline.NewContext(context.Background(), email, &config.Config{})
	if err := p.Run(pCtx); err != nil {
		t.Fatalf("Expected graceful skip, got error: %v", err)
	}
	if !pCtx.Result.Skipped {
		t.Error("Expected the gatekeeper to skip the bot's own message")
	}
	if pCtx.Ticket != nil {
		t.Error("Expected no ticket draft for a skipped message")
	}
}
