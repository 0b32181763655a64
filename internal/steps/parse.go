package steps

import (
	"fmt"
	"log"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// Parse converts the email into a ticket draft.
type Parse struct {
	converter pipeline.Converter
}

// NewParse creates a new parse step.
func NewParse(deps *pipeline.Dependencies) *Parse {
	return &Parse{converter: deps.Converter}
}

// Name returns the step name.
func (s *Parse) Name() string {
	return "parse"
}

// Run builds the ticket draft and stores it on the context.
func (s *Parse) Run(ctx *pipeline.Context) error {
	if s.converter == nil {
		return fmt.Errorf("no converter configured")
	}

	ticket := s.converter.Convert(ctx.Email)
	ctx.Ticket = ticket
	ctx.Result.Summary = ticket.Summary

	log.Printf("[parse] parsed email %s: %s", ctx.Email.ID, ticket.Summary)
	return nil
}
