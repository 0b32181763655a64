// Package config handles loading and merging Email2Jira configuration.
//
// Configuration lives in a directory of yaml files (email.yaml, jira.yaml,
// parser.yaml, config.yaml), with EMAIL2JIRA_* environment variables layered
// on top and a .env file loaded first.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix is the common prefix for configuration environment variables.
const envPrefix = "EMAIL2JIRA_"

// Config is the root configuration structure.
type Config struct {
	Email   EmailConfig   `yaml:"email"`
	Jira    JiraConfig    `yaml:"jira"`
	Parser  ParserConfig  `yaml:"parser"`
	General GeneralConfig `yaml:"general"`
}

// EmailConfig holds IMAP connection settings.
type EmailConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	UseSSL   *bool  `yaml:"use_ssl"`
	Mailbox  string `yaml:"mailbox"`
}

// SSL reports whether the IMAP connection uses TLS. Defaults to true when
// unset.
func (e EmailConfig) SSL() bool {
	return e.UseSSL == nil || *e.UseSSL
}

// JiraConfig holds Jira connection settings.
type JiraConfig struct {
	Server     string `yaml:"server"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	ProjectKey string `yaml:"project_key"`
	IssueType  string `yaml:"issue_type"`
}

// ParserConfig holds email-to-ticket conversion settings.
type ParserConfig struct {
	SubjectPrefix    string            `yaml:"subject_prefix"`
	DefaultIssueType string            `yaml:"default_issue_type"`
	DefaultPriority  string            `yaml:"default_priority"`
	CustomPatterns   map[string]string `yaml:"custom_patterns"`
	FieldMappings    map[string]string `yaml:"field_mappings"`
}

// GeneralConfig holds application-wide settings.
type GeneralConfig struct {
	LogLevel        string `yaml:"log_level"`
	MaxEmails       int    `yaml:"max_emails"`
	PollingInterval int    `yaml:"polling_interval"`
	MarkAsRead      *bool  `yaml:"mark_as_read"`
}

// ShouldMarkAsRead reports whether processed emails are flagged as seen.
// Defaults to true when unset.
func (g GeneralConfig) ShouldMarkAsRead() bool {
	return g.MarkAsRead == nil || *g.MarkAsRead
}

// sectionFiles maps config-dir filenames to their section.
var sectionFiles = map[string]string{
	"email.yaml":  "email",
	"jira.yaml":   "jira",
	"parser.yaml": "parser",
	"config.yaml": "general",
}

// DefaultDir returns the default configuration directory.
func DefaultDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "config"
	}
	return filepath.Join(wd, "config")
}

// Load reads configuration from the given directory, expands environment
// variables in the yaml content, applies EMAIL2JIRA_* overrides, then
// defaults. A .env file in the working directory is loaded first. Missing
// config files are logged, not fatal.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultDir()
	}

	// .env is optional: load if present, ignore if not.
	_ = godotenv.Load()

	cfg := &Config{}
	for filename, section := range sectionFiles {
		path := filepath.Join(dir, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Printf("[config] configuration file %s not found", path)
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := cfg.unmarshalSection(section, []byte(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.loadFromEnv(os.Environ())
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) unmarshalSection(section string, data []byte) error {
	switch section {
	case "email":
		return yaml.Unmarshal(data, &c.Email)
	case "jira":
		return yaml.Unmarshal(data, &c.Jira)
	case "parser":
		return yaml.Unmarshal(data, &c.Parser)
	case "general":
		return yaml.Unmarshal(data, &c.General)
	}
	return fmt.Errorf("unknown config section %q", section)
}

// loadFromEnv applies environment overrides. Variables take the forms
// EMAIL2JIRA_EMAIL_*, EMAIL2JIRA_JIRA_*, EMAIL2JIRA_PARSER_* and
// EMAIL2JIRA_* (general). Parser map entries use dotted keys, e.g.
// EMAIL2JIRA_PARSER_CUSTOM_PATTERNS.EPIC_LINK.
func (c *Config) loadFromEnv(environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		switch {
		case strings.HasPrefix(key, envPrefix+"EMAIL_"):
			c.setEmail(strings.ToLower(strings.TrimPrefix(key, envPrefix+"EMAIL_")), value)
		case strings.HasPrefix(key, envPrefix+"JIRA_"):
			c.setJira(strings.ToLower(strings.TrimPrefix(key, envPrefix+"JIRA_")), value)
		case strings.HasPrefix(key, envPrefix+"PARSER_"):
			c.setParser(strings.ToLower(strings.TrimPrefix(key, envPrefix+"PARSER_")), value)
		default:
			c.setGeneral(strings.ToLower(strings.TrimPrefix(key, envPrefix)), value)
		}
	}
}

func (c *Config) setEmail(key, value string) {
	switch key {
	case "server":
		c.Email.Server = value
	case "port":
		if n, err := strconv.Atoi(value); err == nil {
			c.Email.Port = n
		}
	case "username":
		c.Email.Username = value
	case "password":
		c.Email.Password = value
	case "use_ssl":
		if b, err := strconv.ParseBool(value); err == nil {
			c.Email.UseSSL = &b
		}
	case "mailbox":
		c.Email.Mailbox = value
	}
}

func (c *Config) setJira(key, value string) {
	switch key {
	case "server":
		c.Jira.Server = value
	case "username":
		c.Jira.Username = value
	case "password":
		c.Jira.Password = value
	case "project_key":
		c.Jira.ProjectKey = value
	case "issue_type":
		c.Jira.IssueType = value
	}
}

func (c *Config) setParser(key, value string) {
	switch {
	case key == "subject_prefix":
		c.Parser.SubjectPrefix = value
	case key == "default_issue_type":
		c.Parser.DefaultIssueType = value
	case key == "default_priority":
		c.Parser.DefaultPriority = value
	case strings.HasPrefix(key, "custom_patterns."):
		if c.Parser.CustomPatterns == nil {
			c.Parser.CustomPatterns = make(map[string]string)
		}
		c.Parser.CustomPatterns[strings.TrimPrefix(key, "custom_patterns.")] = value
	case strings.HasPrefix(key, "field_mappings."):
		if c.Parser.FieldMappings == nil {
			c.Parser.FieldMappings = make(map[string]string)
		}
		c.Parser.FieldMappings[strings.TrimPrefix(key, "field_mappings.")] = value
	}
}

func (c *Config) setGeneral(key, value string) {
	switch key {
	case "log_level":
		c.General.LogLevel = value
	case "max_emails":
		if n, err := strconv.Atoi(value); err == nil {
			c.General.MaxEmails = n
		}
	case "polling_interval":
		if n, err := strconv.Atoi(value); err == nil {
			c.General.PollingInterval = n
		}
	case "mark_as_read":
		if b, err := strconv.ParseBool(value); err == nil {
			c.General.MarkAsRead = &b
		}
	}
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Email.Port == 0 {
		c.Email.Port = 993
	}
	if c.Email.Mailbox == "" {
		c.Email.Mailbox = "INBOX"
	}
	if c.Jira.IssueType == "" {
		c.Jira.IssueType = "Story"
	}
	if c.Parser.DefaultIssueType == "" {
		c.Parser.DefaultIssueType = "Story"
	}
	if c.Parser.DefaultPriority == "" {
		c.Parser.DefaultPriority = "Medium"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "INFO"
	}
	if c.General.MaxEmails == 0 {
		c.General.MaxEmails = 10
	}
	if c.General.PollingInterval == 0 {
		c.General.PollingInterval = 300
	}
}
