package imap

import (
	"fmt"
	"io"

	"github.com/emersion/go-message/mail"

	// Register extended charsets so non-UTF-8 messages decode.
	_ "github.com/emersion/go-message/charset"

	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// parseMessage decodes a raw RFC 822 message into an Email: headers, text and
// HTML bodies, and attachments with decoded filenames.
func parseMessage(r io.Reader) (pipeline.Email, error) {
	var email pipeline.Email

	mr, err := mail.CreateReader(r)
	if err != nil {
		return email, fmt.Errorf("failed to read message: %w", err)
	}

	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.Sender = from[0].String()
	}
	if date, err := mr.Header.Date(); err == nil {
		email.Date = date
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return email, fmt.Errorf("failed to read message part: %w", err)
		}

		switch header := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := header.ContentType()
			content, err := io.ReadAll(part.Body)
			if err != nil {
				return email, fmt.Errorf("failed to read body part: %w", err)
			}
			switch contentType {
			case "text/plain":
				email.Body = string(content)
			case "text/html":
				email.HTMLBody = string(content)
			}

		case *mail.AttachmentHeader:
			filename, err := header.Filename()
			if err != nil || filename == "" {
				continue
			}
			content, err := io.ReadAll(part.Body)
			if err != nil {
				return email, fmt.Errorf("failed to read attachment %s: %w", filename, err)
			}
			email.Attachments = append(email.Attachments, pipeline.Attachment{
				Filename: filename,
				Content:  content,
			})
		}
	}

	return email, nil
}
