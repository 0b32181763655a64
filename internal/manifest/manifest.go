// Package manifest filters pip requirements manifests before dependency
// verification. It strips comments, blank lines, and Python standard-library
// module names that have no business being in a requirements file.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNoPackages indicates that filtering left no installable requirement.
var ErrNoPackages = errors.New("no valid packages found")

// DefaultExcludes is the single source of truth for standard-library module
// names stripped from requirements manifests. Both CLI invocations and the CI
// workflow go through this list.
var DefaultExcludes = []string{
	"imaplib",
	"email",
	"argparse",
	"sys",
	"os",
	"logging",
}

// specifierChars are the characters that can terminate a package name in a
// PEP 508 requirement line: version specifiers, extras, environment markers,
// and direct references.
const specifierChars = " \t=<>!~;[@("

// PackageName returns the package-name token of a requirement line: everything
// up to the first version specifier, extras bracket, or environment marker.
func PackageName(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.IndexAny(line, specifierChars); i >= 0 {
		return line[:i]
	}
	return line
}

// normalize lowercases a package name and collapses the characters PEP 503
// treats as equivalent, so "Email" and "email" compare equal.
func normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("_", "-", ".", "-").Replace(name)
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	return name
}

// Filter returns the requirement lines that survive filtering: non-blank,
// not comments, and whose package-name token is not excluded. Order is
// preserved. Exclusion compares the full name token, not a prefix, so a
// package that merely starts with an excluded name (emailvalidator, say)
// survives.
func Filter(lines []string, excludes []string) []string {
	excluded := make(map[string]bool, len(excludes))
	for _, e := range excludes {
		excluded[normalize(e)] = true
	}

	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if excluded[normalize(PackageName(trimmed))] {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// FilterFile reads a manifest from disk and filters it. A missing manifest is
// not an error at this stage; it yields an empty result and the validation
// gate reports it.
func FilterFile(path string, excludes []string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Filter(lines, excludes), nil
}

// Gate validates the derived list. An empty list is the named
// "no valid packages" failure the caller must treat as fatal.
func Gate(entries []string) error {
	if len(entries) == 0 {
		return ErrNoPackages
	}
	return nil
}

// WriteDerived writes the filtered entries to a uniquely named temp file and
// returns its path with a cleanup func. Callers defer cleanup so the derived
// file is removed on every exit path, success or failure.
func WriteDerived(entries []string) (string, func(), error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("requirements-derived-%s.txt", uuid.NewString()))
	data := strings.Join(entries, "\n")
	if len(entries) > 0 {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return "", nil, fmt.Errorf("failed to write derived manifest: %w", err)
	}
	cleanup := func() { os.Remove(path) }
	return path, cleanup, nil
}
