package jira

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	gojira "github.com/andygrunwald/go-jira"
	"github.com/trivago/tgo/tcontainer"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// ErrNotConnected indicates an operation was attempted before Connect.
var ErrNotConnected = errors.New("not connected to Jira server")

// maxAttachmentSize caps uploads at 10 MiB, the limit the tracker enforces.
const maxAttachmentSize = 10 << 20

// Config holds Jira connection settings.
type Config struct {
	Server     string
	Username   string
	Password   string
	ProjectKey string
	IssueType  string
}

// Client wraps the Jira REST API client.
type Client struct {
	cfg     Config
	retry   RetryConfig
	client  *gojira.Client
	project *gojira.Project
}

// NewClient creates a Client. Connect must be called before use.
func NewClient(cfg Config) *Client {
	if cfg.IssueType == "" {
		cfg.IssueType = "Story"
	}
	return &Client{cfg: cfg, retry: DefaultRetryConfig()}
}

// Connect authenticates against the server and verifies the configured
// project key exists.
func (c *Client) Connect(ctx context.Context) error {
	tp := gojira.BasicAuthTransport{
		Username: c.cfg.Username,
		Password: c.cfg.Password,
	}
	client, err := gojira.NewClient(tp.Client(), c.cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to create Jira client for %s: %w", c.cfg.Server, err)
	}

	project, err := withRetry(ctx, c.retry, "project lookup", func() (*gojira.Project, *gojira.Response, error) {
		return client.Project.GetWithContext(ctx, c.cfg.ProjectKey)
	})
	if err != nil {
		return fmt.Errorf("failed to verify project %s: %w", c.cfg.ProjectKey, err)
	}

	c.client = client
	c.project = project
	return nil
}

// Close drops the connection state. The REST client holds no persistent
// connection to tear down.
func (c *Client) Close() {
	c.client = nil
	c.project = nil
}

// CreateTicket creates a Jira issue from a ticket draft and returns its key.
func (c *Client) CreateTicket(ctx context.Context, t *pipeline.Ticket) (string, error) {
	if c.client == nil {
		return "", ErrNotConnected
	}

	issueType := t.IssueType
	if issueType == "" {
		issueType = c.cfg.IssueType
	}

	fields := &gojira.IssueFields{
		Project:     gojira.Project{Key: c.cfg.ProjectKey},
		Summary:     t.Summary,
		Description: t.Description,
		Type:        gojira.IssueType{Name: issueType},
	}
	if len(t.Labels) > 0 {
		fields.Labels = t.Labels
	}
	for _, component := range t.Components {
		fields.Components = append(fields.Components, &gojira.Component{Name: component})
	}
	if t.Priority != "" {
		fields.Priority = &gojira.Priority{Name: t.Priority}
	}
	if t.Assignee != "" {
		fields.Assignee = &gojira.User{Name: t.Assignee}
	}
	if t.Reporter != "" {
		fields.Reporter = &gojira.User{Name: t.Reporter}
	}

	created, err := withRetry(ctx, c.retry, "create issue", func() (*gojira.Issue, *gojira.Response, error) {
		return c.client.Issue.CreateWithContext(ctx, &gojira.Issue{Fields: fields})
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Jira issue: %w", err)
	}

	log.Printf("[jira] created issue %s", created.Key)
	return created.Key, nil
}

// CreateIssueWithFields creates an issue with explicit extra fields merged in,
// for callers that need custom fields beyond the ticket draft.
func (c *Client) CreateIssueWithFields(ctx context.Context, t *pipeline.Ticket, extra map[string]interface{}) (string, error) {
	if c.client == nil {
		return "", ErrNotConnected
	}
	if len(extra) == 0 {
		return c.CreateTicket(ctx, t)
	}

	fields := &gojira.IssueFields{
		Project:     gojira.Project{Key: c.cfg.ProjectKey},
		Summary:     t.Summary,
		Description: t.Description,
		Type:        gojira.IssueType{Name: c.cfg.IssueType},
		Unknowns:    tcontainer.MarshalMap(extra),
	}
	if t.IssueType != "" {
		fields.Type = gojira.IssueType{Name: t.IssueType}
	}

	created, err := withRetry(ctx, c.retry, "create issue", func() (*gojira.Issue, *gojira.Response, error) {
		return c.client.Issue.CreateWithContext(ctx, &gojira.Issue{Fields: fields})
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Jira issue: %w", err)
	}
	return created.Key, nil
}

// AttachFile uploads an attachment to an issue. Oversized payloads are
// rejected locally before any network call.
func (c *Client) AttachFile(ctx context.Context, issueKey, filename string, content []byte) error {
	if c.client == nil {
		return ErrNotConnected
	}
	if len(content) > maxAttachmentSize {
		return fmt.Errorf("attachment %s is %d bytes, exceeds the %d byte limit", filename, len(content), maxAttachmentSize)
	}

	_, err := withRetry(ctx, c.retry, "attach file", func() (*[]gojira.Attachment, *gojira.Response, error) {
		return c.client.Issue.PostAttachmentWithContext(ctx, issueKey, bytes.NewReader(content), filename)
	})
	if err != nil {
		return fmt.Errorf("failed to add attachment to issue %s: %w", issueKey, err)
	}

	log.Printf("[jira] added attachment %s to issue %s", filename, issueKey)
	return nil
}

// AddComment posts a comment on an issue.
func (c *Client) AddComment(ctx context.Context, issueKey, body string) error {
	if c.client == nil {
		return ErrNotConnected
	}

	_, err := withRetry(ctx, c.retry, "add comment", func() (*gojira.Comment, *gojira.Response, error) {
		return c.client.Issue.AddCommentWithContext(ctx, issueKey, &gojira.Comment{Body: body})
	})
	if err != nil {
		return fmt.Errorf("failed to add comment to issue %s: %w", issueKey, err)
	}
	return nil
}

// ProjectKeys lists the keys of all projects visible to the account.
func (c *Client) ProjectKeys(ctx context.Context) ([]string, error) {
	if c.client == nil {
		return nil, ErrNotConnected
	}

	list, err := withRetry(ctx, c.retry, "list projects", func() (*gojira.ProjectList, *gojira.Response, error) {
		return c.client.Project.GetListWithContext(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get project keys: %w", err)
	}

	var keys []string
	for _, p := range *list {
		keys = append(keys, p.Key)
	}
	return keys, nil
}

// IssueTypes lists the issue type names available in the configured project.
func (c *Client) IssueTypes(ctx context.Context) ([]string, error) {
	if c.client == nil || c.project == nil {
		return nil, ErrNotConnected
	}

	var names []string
	for _, it := range c.project.IssueTypes {
		names = append(names, it.Name)
	}
	return names, nil
}
