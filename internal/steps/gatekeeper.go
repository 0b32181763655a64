// Package steps contains the modular pipeline steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"log"
	"strings"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// Gatekeeper decides whether an email should be processed at all.
type Gatekeeper struct {
	botAddress string
}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{botAddress: deps.BotAddress}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run skips messages the bot sent to itself, which would otherwise loop:
// ticket notifications arriving back in the watched mailbox.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	if s.botAddress != "" && senderMatches(ctx.Email.Sender, s.botAddress) {
		log.Printf("[gatekeeper] skipping message %s from the bot's own address", ctx.Email.ID)
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "message sent by the bot itself"
		return pipeline.ErrSkipPipeline
	}

	if strings.TrimSpace(ctx.Email.Subject) == "" && strings.TrimSpace(ctx.Email.Body) == "" {
		log.Printf("[gatekeeper] skipping empty message %s", ctx.Email.ID)
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "empty message"
		return pipeline.ErrSkipPipeline
	}

	return nil
}

// senderMatches reports whether the From header contains the given address.
// Headers arrive as "Name <addr>", so this is a case-insensitive substring
// match on the address part.
func senderMatches(sender, address string) bool {
	return strings.Contains(strings.ToLower(sender), strings.ToLower(address))
}
