// Package imap reads unseen messages from an IMAP mailbox and hands them to
// the pipeline as emails.
package imap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// ErrNotConnected indicates an operation was attempted before Connect.
var ErrNotConnected = errors.New("not connected to email server")

// Config holds IMAP connection settings.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
	UseSSL   bool
	Mailbox  string
}

// Reader wraps an IMAP client.
type Reader struct {
	cfg  Config
	conn *client.Client
}

// NewReader creates a Reader. Connect must be called before use.
func NewReader(cfg Config) *Reader {
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	return &Reader{cfg: cfg}
}

// Connect dials the server and logs in.
func (r *Reader) Connect() error {
	addr := fmt.Sprintf("%s:%d", r.cfg.Server, r.cfg.Port)

	var (
		c   *client.Client
		err error
	)
	if r.cfg.UseSSL {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to email server %s: %w", addr, err)
	}

	if err := c.Login(r.cfg.Username, r.cfg.Password); err != nil {
		c.Logout()
		return fmt.Errorf("failed to log in as %s: %w", r.cfg.Username, err)
	}

	r.conn = c
	return nil
}

// Disconnect logs out. Safe to call when not connected.
func (r *Reader) Disconnect() {
	if r.conn == nil {
		return
	}
	if err := r.conn.Logout(); err != nil {
		log.Printf("[imap] error during logout: %v", err)
	}
	r.conn = nil
}

// SelectMailbox selects the mailbox to read from. An empty name selects the
// configured default.
func (r *Reader) SelectMailbox(name string) error {
	if r.conn == nil {
		return ErrNotConnected
	}
	if name == "" {
		name = r.cfg.Mailbox
	}
	if _, err := r.conn.Select(name, false); err != nil {
		return fmt.Errorf("failed to select mailbox %s: %w", name, err)
	}
	return nil
}

// UnreadEmails fetches up to limit unseen messages from the selected mailbox.
// Messages that fail to parse are logged and skipped.
func (r *Reader) UnreadEmails(limit int) ([]pipeline.Email, error) {
	if r.conn == nil {
		return nil, ErrNotConnected
	}

	criteria := goimap.NewSearchCriteria()
	criteria.WithoutFlags = []string{goimap.SeenFlag}
	ids, err := r.conn.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search for unread emails: %w", err)
	}
	if len(ids) == 0 {
		log.Printf("[imap] no unread emails found")
		return nil, nil
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	seqset := new(goimap.SeqSet)
	seqset.AddNum(ids...)

	section := &goimap.BodySectionName{}
	items := []goimap.FetchItem{section.FetchItem()}

	messages := make(chan *goimap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- r.conn.Fetch(seqset, items, messages)
	}()

	var emails []pipeline.Email
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			log.Printf("[imap] message %d has no body section", msg.SeqNum)
			continue
		}
		email, err := parseMessage(body)
		if err != nil {
			log.Printf("[imap] failed to parse message %d: %v", msg.SeqNum, err)
			continue
		}
		email.ID = strconv.FormatUint(uint64(msg.SeqNum), 10)
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch emails: %w", err)
	}
	return emails, nil
}

// MarkRead flags a message as seen. The id is the sequence number returned by
// UnreadEmails.
func (r *Reader) MarkRead(ctx context.Context, id string) error {
	if r.conn == nil {
		return ErrNotConnected
	}
	num, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", id, err)
	}

	seqset := new(goimap.SeqSet)
	seqset.AddNum(uint32(num))
	item := goimap.FormatFlagsOp(goimap.AddFlags, true)
	if err := r.conn.Store(seqset, item, []interface{}{goimap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("failed to mark email %s as read: %w", id, err)
	}
	return nil
}
