package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CreateDefaultFiles scaffolds the configuration directory with commented-out
// starter files. Existing files are never overwritten.
func CreateDefaultFiles(dir string) error {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	ssl := true
	markRead := true

	defaults := map[string]any{
		"email.yaml": EmailConfig{
			Server:   "imap.example.com",
			Port:     993,
			Username: "your-email@example.com",
			Password: "your-password",
			UseSSL:   &ssl,
			Mailbox:  "INBOX",
		},
		"jira.yaml": JiraConfig{
			Server:     "https://your-jira-instance.atlassian.net",
			Username:   "your-username",
			Password:   "your-api-token",
			ProjectKey: "PROJ",
			IssueType:  "Story",
		},
		"parser.yaml": ParserConfig{
			SubjectPrefix:    "[Email2Jira]",
			DefaultIssueType: "Story",
			DefaultPriority:  "Medium",
			CustomPatterns: map[string]string{
				"epic_link": `(?i)epic:\s*(\w+-\d+)`,
			},
			FieldMappings: map[string]string{
				"sender": "reporter",
			},
		},
		"config.yaml": GeneralConfig{
			LogLevel:        "INFO",
			MaxEmails:       10,
			PollingInterval: 300,
			MarkAsRead:      &markRead,
		},
	}

	for filename, data := range defaults {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			log.Printf("[config] %s already exists, skipping", path)
			continue
		}
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal default %s: %w", filename, err)
		}
		if err := os.WriteFile(path, out, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Printf("[config] created %s", path)
	}
	return nil
}
