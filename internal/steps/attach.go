package steps

import (
	"log"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// Attach uploads the email's attachments to the created ticket.
type Attach struct {
	tracker pipeline.Tracker
	dryRun  bool
}

// NewAttach creates a new attach step.
func NewAttach(deps *pipeline.Dependencies) *Attach {
	return &Attach{tracker: deps.Tracker, dryRun: deps.DryRun}
}

// Name returns the step name.
func (s *Attach) Name() string {
	return "attach"
}

// Run uploads attachments. Individual upload failures are recorded but do not
// fail the pipeline; the ticket already exists.
func (s *Attach) Run(ctx *pipeline.Context) error {
	if len(ctx.Email.Attachments) == 0 {
		return nil
	}

	if s.dryRun {
		log.Printf("[attach] DRY RUN: would upload %d attachment(s)", len(ctx.Email.Attachments))
		return nil
	}

	if ctx.Result.TicketKey == "" {
		log.Printf("[attach] no ticket key, skipping %d attachment(s)", len(ctx.Email.Attachments))
		return nil
	}

	for _, a := range ctx.Email.Attachments {
		if err := s.tracker.AttachFile(ctx.Ctx, ctx.Result.TicketKey, a.Filename, a.Content); err != nil {
			log.Printf("[attach] failed to upload %s: %v", a.Filename, err)
			ctx.Result.Errors = append(ctx.Result.Errors, err)
			continue
		}
		ctx.Result.AttachmentsAdded++
	}

	return nil
}
