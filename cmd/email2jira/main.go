// Package main is the entry point for the email2jira CLI.
package main

import (
	"github.com/email2jira/email2jira/cmd/email2jira/commands"
)

func main() {
	commands.Execute()
}
