package parser

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

func mustParser(t *testing.T, opts Options) *Parser {
	t.Helper()
	p, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestConvertDefaults(t *testing.T) {
	p := mustParser(t, Options{})
	ticket := p.Convert(&pipeline.Email{Subject: "Broken login", Body: "The login page 500s."})

	if ticket.Summary != "Broken login" {
		t.Errorf("Summary = %q", ticket.Summary)
	}
	if ticket.IssueType != "Story" {
		t.Errorf("IssueType = %q, want default Story", ticket.IssueType)
	}
	if ticket.Priority != "Medium" {
		t.Errorf("Priority = %q, want default Medium", ticket.Priority)
	}
	if !strings.Contains(ticket.Description, "The login page 500s.") {
		t.Errorf("Description missing body: %q", ticket.Description)
	}
}

func TestConvertSubjectPrefixAndMissingSubject(t *testing.T) {
	p := mustParser(t, Options{SubjectPrefix: "[Email2Jira]"})

	ticket := p.Convert(&pipeline.Email{Subject: "Crash"})
	if ticket.Summary != "[Email2Jira] Crash" {
		t.Errorf("Summary = %q", ticket.Summary)
	}

	ticket = p.Convert(&pipeline.Email{})
	if ticket.Summary != "[Email2Jira] No Subject" {
		t.Errorf("Summary = %q", ticket.Summary)
	}
}

func TestConvertExtractsFields(t *testing.T) {
	p := mustParser(t, Options{})
	body := `Something is broken.

Type: Bug
Priority: High
Components: auth, web
Labels: regression, login-flow
Assignee: jane.doe@example.com
`
	ticket := p.Convert(&pipeline.Email{Subject: "s", Body: body})

	if ticket.IssueType != "Bug" {
		t.Errorf("IssueType = %q", ticket.IssueType)
	}
	if ticket.Priority != "High" {
		t.Errorf("Priority = %q", ticket.Priority)
	}
	if !reflect.DeepEqual(ticket.Components, []string{"auth", "web"}) {
		t.Errorf("Components = %v", ticket.Components)
	}
	if !reflect.DeepEqual(ticket.Labels, []string{"regression", "login-flow"}) {
		t.Errorf("Labels = %v", ticket.Labels)
	}
	if ticket.Assignee != "jane.doe@example.com" {
		t.Errorf("Assignee = %q", ticket.Assignee)
	}
	// Extracted markers must not leak into the description.
	if strings.Contains(ticket.Description, "Priority:") {
		t.Errorf("Description still contains field markers: %q", ticket.Description)
	}
}

func TestConvertStripsSignatureAndQuotes(t *testing.T) {
	p := mustParser(t, Options{})

	tests := []struct {
		name string
		body string
	}{
		{"signature", "Please fix this.\nRegards,\nBob"},
		{"dash signature", "Please fix this.\n-- \nBob\nACME Corp"},
		{"quoted reply", "Please fix this.\nOn Tue, Jan 2 Bob wrote:\n> old text"},
		{"original message", "Please fix this.\n-----Original Message-----\nFrom: Bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := p.Convert(&pipeline.Email{Subject: "s", Body: tt.body})
			if !strings.Contains(ticket.Description, "Please fix this.") {
				t.Fatalf("description lost the content: %q", ticket.Description)
			}
			if strings.Contains(ticket.Description, "Bob") {
				t.Fatalf("description kept stripped text: %q", ticket.Description)
			}
		})
	}
}

func TestConvertCollapsesBlankRuns(t *testing.T) {
	p := mustParser(t, Options{})
	ticket := p.Convert(&pipeline.Email{Subject: "s", Body: "a\n\n\n\n\nb"})
	if strings.Contains(ticket.Description, "\n\n\n") {
		t.Errorf("blank runs not collapsed: %q", ticket.Description)
	}
}

func TestConvertHTMLFallback(t *testing.T) {
	p := mustParser(t, Options{})
	ticket := p.Convert(&pipeline.Email{Subject: "s", HTMLBody: "<p>hello</p>"})
	if !strings.Contains(ticket.Description, "<p>hello</p>") {
		t.Errorf("expected html fallback in description: %q", ticket.Description)
	}
}

func TestCustomPatternsAndFieldMappings(t *testing.T) {
	p := mustParser(t, Options{
		CustomPatterns: map[string]string{
			// Override the default assignee marker with a stricter one.
			"assignee": `(?i)owner:\s*([\w\.\-@]+)`,
		},
		FieldMappings: map[string]string{"sender": "reporter"},
	})

	e := &pipeline.Email{
		Subject: "s",
		Sender:  "alice@example.com",
		Body:    "Owner: carol\n",
		Date:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	ticket := p.Convert(e)

	if ticket.Assignee != "carol" {
		t.Errorf("custom pattern not applied, Assignee = %q", ticket.Assignee)
	}
	if ticket.Reporter != "alice@example.com" {
		t.Errorf("field mapping not applied, Reporter = %q", ticket.Reporter)
	}
}

func TestNewRejectsBadCustomPattern(t *testing.T) {
	_, err := New(Options{CustomPatterns: map[string]string{"bad": "("}})
	if err == nil {
		t.Fatal("expected error for invalid custom pattern")
	}
}
