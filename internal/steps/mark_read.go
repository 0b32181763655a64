package steps

import (
	"log"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// MarkRead flags the processed email as seen so it is not picked up again.
type MarkRead struct {
	mail    pipeline.Mailbox
	enabled bool
}

// NewMarkRead creates a new mark_read step.
func NewMarkRead(deps *pipeline.Dependencies) *MarkRead {
	return &MarkRead{mail: deps.Mail, enabled: deps.MarkAsRead}
}

// Name returns the step name.
func (s *MarkRead) Name() string {
	return "mark_read"
}

// Run marks the email as read when configured to. This happens in dry-run
// mode too, matching the processing loop's contract: a handled email is a
// handled email.
func (s *MarkRead) Run(ctx *pipeline.Context) error {
	if !s.enabled {
		return nil
	}
	if s.mail == nil {
		return nil
	}

	if err := s.mail.MarkRead(ctx.Ctx, ctx.Email.ID); err != nil {
		log.Printf("[mark_read] failed to mark email %s as read: %v", ctx.Email.ID, err)
		ctx.Result.Errors = append(ctx.Result.Errors, err)
		return nil
	}

	ctx.Result.MarkedRead = true
	return nil
}
