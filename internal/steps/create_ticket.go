package steps

import (
	"fmt"
	"log"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// CreateTicket files the ticket draft with the tracker.
type CreateTicket struct {
	tracker pipeline.Tracker
	dryRun  bool
}

// NewCreateTicket creates a new create_ticket step.
func NewCreateTicket(deps *pipeline.Dependencies) *CreateTicket {
	return &CreateTicket{tracker: deps.Tracker, dryRun: deps.DryRun}
}

// Name returns the step name.
func (s *CreateTicket) Name() string {
	return "create_ticket"
}

// Run creates the issue, or logs what would be created in dry-run mode.
func (s *CreateTicket) Run(ctx *pipeline.Context) error {
	if ctx.Ticket == nil {
		return fmt.Errorf("no ticket draft on context; parse step must run first")
	}

	if s.dryRun {
		log.Printf("[create_ticket] DRY RUN: would create issue: %s", ctx.Ticket.Summary)
		return nil
	}

	if s.tracker == nil {
		return fmt.Errorf("no tracker configured")
	}

	key, err := s.tracker.CreateTicket(ctx.Ctx, ctx.Ticket)
	if err != nil {
		return fmt.Errorf("failed to create ticket for email %s: %w", ctx.Email.ID, err)
	}

	ctx.Result.TicketKey = key
	log.Printf("[create_ticket] created issue %s for email %s", key, ctx.Email.ID)
	return nil
}
