// Package parser converts inbound emails into Jira ticket drafts.
//
// Structured fields (type, priority, labels, ...) are extracted from the body
// with regex markers; the remainder of the body, minus signatures and quoted
// replies, becomes the ticket description.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// Options configures a Parser.
type Options struct {
	// SubjectPrefix is prepended to every ticket summary.
	SubjectPrefix string

	// DefaultIssueType is used when the body carries no type marker.
	DefaultIssueType string

	// DefaultPriority is used when the body carries no priority marker.
	DefaultPriority string

	// CustomPatterns adds or overrides extraction patterns by field name.
	// Each pattern needs one capture group.
	CustomPatterns map[string]string

	// FieldMappings copies email fields onto ticket fields,
	// e.g. "sender" -> "reporter".
	FieldMappings map[string]string
}

// defaultPatterns extract structured fields from email bodies.
var defaultPatterns = map[string]string{
	"issue_type": `(?i)type:\s*(\w+)`,
	"priority":   `(?i)priority:\s*(\w+)`,
	"components": `(?i)components?:[ \t]*([\w \t,]+)`,
	"labels":     `(?i)labels?:[ \t]*([\w \t,\-]+)`,
	"assignee":   `(?i)assignee:\s*([\w\.\-@]+)`,
}

var signatureMarkers = []string{
	"\n-- \n",
	"\nRegards,",
	"\nBest regards,",
	"\nThanks,",
	"\nThank you,",
	"\nCheers,",
}

var quotedMarkers = []string{
	"\nOn ",
	"\n> ",
	"\n-----Original Message-----",
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Parser converts emails to ticket drafts.
type Parser struct {
	opts     Options
	patterns map[string]*regexp.Regexp
}

// New creates a Parser, compiling default and custom extraction patterns.
func New(opts Options) (*Parser, error) {
	if opts.DefaultIssueType == "" {
		opts.DefaultIssueType = "Story"
	}
	if opts.DefaultPriority == "" {
		opts.DefaultPriority = "Medium"
	}

	patterns := make(map[string]*regexp.Regexp, len(defaultPatterns)+len(opts.CustomPatterns))
	for name, expr := range defaultPatterns {
		patterns[name] = regexp.MustCompile(expr)
	}
	for name, expr := range opts.CustomPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid custom pattern %q: %w", name, err)
		}
		patterns[name] = re
	}

	return &Parser{opts: opts, patterns: patterns}, nil
}

// Convert builds a ticket draft from an email.
func (p *Parser) Convert(e *pipeline.Email) *pipeline.Ticket {
	t := &pipeline.Ticket{
		Summary:     p.summary(e),
		Description: p.description(e),
		IssueType:   p.opts.DefaultIssueType,
		Priority:    p.opts.DefaultPriority,
	}

	body := e.Body
	if v := p.extract(body, "issue_type"); v != "" {
		t.IssueType = v
	}
	if v := p.extract(body, "priority"); v != "" {
		t.Priority = v
	}
	if v := p.extractList(body, "components"); len(v) > 0 {
		t.Components = v
	}
	if v := p.extractList(body, "labels"); len(v) > 0 {
		t.Labels = v
	}
	if v := p.extract(body, "assignee"); v != "" {
		t.Assignee = v
	}

	p.applyFieldMappings(e, t)
	return t
}

func (p *Parser) summary(e *pipeline.Email) string {
	subject := e.Subject
	if subject == "" {
		subject = "No Subject"
	}
	if p.opts.SubjectPrefix != "" {
		return p.opts.SubjectPrefix + " " + subject
	}
	return subject
}

func (p *Parser) description(e *pipeline.Email) string {
	// Prefer the plain text body, fall back to HTML.
	body := e.Body
	if body == "" {
		body = e.HTMLBody
	}
	body = p.cleanBody(body)

	sender := e.Sender
	if sender == "" {
		sender = "Unknown"
	}
	date := "Unknown"
	if !e.Date.IsZero() {
		date = e.Date.Format(time.RFC1123Z)
	}

	return fmt.Sprintf("\nFrom: %s\nDate: %s\n\n%s\n", sender, date, body)
}

// cleanBody strips extracted field markers, signatures, and quoted replies.
func (p *Parser) cleanBody(body string) string {
	for _, re := range p.patterns {
		body = re.ReplaceAllString(body, "")
	}

	for _, marker := range signatureMarkers {
		if i := strings.Index(body, marker); i >= 0 {
			body = body[:i]
		}
	}
	for _, marker := range quotedMarkers {
		if i := strings.Index(body, marker); i >= 0 {
			body = body[:i]
		}
	}

	body = blankRuns.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}

func (p *Parser) extract(text, field string) string {
	if text == "" {
		return ""
	}
	re, ok := p.patterns[field]
	if !ok {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (p *Parser) extractList(text, field string) []string {
	value := p.extract(text, field)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// applyFieldMappings copies configured email fields onto ticket fields.
func (p *Parser) applyFieldMappings(e *pipeline.Email, t *pipeline.Ticket) {
	for emailField, ticketField := range p.opts.FieldMappings {
		var value string
		switch strings.ToLower(emailField) {
		case "sender":
			value = e.Sender
		case "subject":
			value = e.Subject
		case "date":
			if !e.Date.IsZero() {
				value = e.Date.Format(time.RFC1123Z)
			}
		}
		if value == "" {
			continue
		}
		switch strings.ToLower(ticketField) {
		case "reporter":
			t.Reporter = value
		case "assignee":
			t.Assignee = value
		case "summary":
			t.Summary = value
		}
	}
}
