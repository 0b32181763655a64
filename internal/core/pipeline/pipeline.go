// Package pipeline provides the core pipeline engine for Email2Jira.
// It defines the Step interface and Context structure used by all pipeline
// steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/email2jira/email2jira/internal/core/config"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., the message came
// from the bot itself).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic.
	// It should return ErrSkipPipeline to stop the pipeline gracefully,
	// or any other error to indicate failure.
	Run(ctx *Context) error
}

// Email represents an inbound email being processed.
type Email struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	Sender      string       `json:"sender"`
	Date        time.Time    `json:"date"`
	Body        string       `json:"body"`
	HTMLBody    string       `json:"html_body,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file carried by an email.
type Attachment struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// Ticket is the Jira issue draft derived from an email.
type Ticket struct {
	Summary     string
	Description string
	IssueType   string
	Priority    string
	Labels      []string
	Components  []string
	Assignee    string
	Reporter    string
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	RunID            string
	EmailID          string
	Summary          string
	Skipped          bool
	SkipReason       string
	TicketKey        string
	AttachmentsAdded int
	MarkedRead       bool
	Errors           []error
}

// Mailbox is the mail-side dependency steps need: flagging a processed
// message as read.
type Mailbox interface {
	MarkRead(ctx context.Context, id string) error
}

// Tracker is the issue-tracker dependency: creating tickets and attaching
// files to them.
type Tracker interface {
	CreateTicket(ctx context.Context, t *Ticket) (string, error)
	AttachFile(ctx context.Context, issueKey, filename string, content []byte) error
}

// Converter turns an email into a ticket draft.
type Converter interface {
	Convert(e *Email) *Ticket
}

// Dependencies holds the dependencies injected into steps.
type Dependencies struct {
	Mail      Mailbox
	Tracker   Tracker
	Converter Converter

	// DryRun disables all tracker writes; steps log what they would do.
	DryRun bool

	// MarkAsRead controls whether processed emails are flagged as seen.
	MarkAsRead bool

	// BotAddress is the account's own address, used to break mail loops.
	BotAddress string
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Email is the message being processed.
	Email *Email

	// Ticket is the draft built by the parse step.
	Ticket *Ticket

	// Config is the loaded configuration.
	Config *config.Config

	// Result accumulates the processing results.
	Result *Result

	// Metadata allows steps to pass arbitrary data to subsequent steps.
	Metadata map[string]interface{}
}

// NewContext creates a new pipeline context for an email.
func NewContext(ctx context.Context, e *Email, cfg *config.Config) *Context {
	return &Context{
		Ctx:    ctx,
		Email:  e,
		Config: cfg,
		Result: &Result{
			RunID:   uuid.NewString(),
			EmailID: e.ID,
			Summary: e.Subject,
		},
		Metadata: make(map[string]interface{}),
	}
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipPipeline, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
