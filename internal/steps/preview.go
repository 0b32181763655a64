package steps

import (
	"fmt"
	"log"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// Preview logs the ticket that would be created, without tracker writes.
// It is the terminal step of the preview workflow.
type Preview struct{}

// NewPreview creates a new preview step.
func NewPreview(deps *pipeline.Dependencies) *Preview {
	return &Preview{}
}

// Name returns the step name.
func (s *Preview) Name() string {
	return "preview"
}

// Run logs the draft.
func (s *Preview) Run(ctx *pipeline.Context) error {
	if ctx.Ticket == nil {
		return fmt.Errorf("no ticket draft on context; parse step must run first")
	}

	t := ctx.Ticket
	log.Printf("[preview] would create issue: %s (type=%s priority=%s labels=%v components=%v, %d attachment(s))",
		t.Summary, t.IssueType, t.Priority, t.Labels, t.Components, len(ctx.Email.Attachments))
	return nil
}
