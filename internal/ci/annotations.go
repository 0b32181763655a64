// Package ci emits diagnostics through the structured-annotation channel of
// the surrounding automation environment. Under GitHub Actions it prints
// workflow commands; elsewhere it falls back to plain log output.
package ci

import (
	"fmt"
	"io"
	"os"
)

// Out is the annotation destination, overridable in tests. Workflow commands
// are only recognized on stdout.
var Out io.Writer = os.Stdout

// IsActions reports whether the process runs under GitHub Actions.
func IsActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// Errorf emits an error annotation.
func Errorf(format string, args ...any) {
	annotate("error", format, args...)
}

// Noticef emits a notice annotation.
func Noticef(format string, args ...any) {
	annotate("notice", format, args...)
}

func annotate(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if IsActions() {
		fmt.Fprintf(Out, "::%s::%s\n", level, msg)
		return
	}
	fmt.Fprintf(Out, "%s: %s\n", level, msg)
}
