package manifest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakePython writes an executable that records its arguments and exits with
// the given code, standing in for the real interpreter.
func fakePython(t *testing.T, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "python3")
	script := "#!/bin/sh\necho \"$@\"\nexit " + string(rune('0'+exitCode)) + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckerDryRun(t *testing.T) {
	var out bytes.Buffer
	c := &Checker{Python: fakePython(t, 0), Stdout: &out, Stderr: &out}

	if err := c.Run(context.Background(), ModeDryRun, "/tmp/derived.txt"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "pip install --dry-run --requirement /tmp/derived.txt") {
		t.Fatalf("unexpected pip invocation: %q", got)
	}
	if strings.Contains(got, "pip check") {
		t.Fatalf("dry-run mode should not run pip check: %q", got)
	}
}

func TestCheckerCheckMode(t *testing.T) {
	var out bytes.Buffer
	c := &Checker{Python: fakePython(t, 0), Stdout: &out, Stderr: &out}

	if err := c.Run(context.Background(), ModeCheck, "/tmp/derived.txt"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "pip check") {
		t.Fatalf("check mode should run pip check: %q", out.String())
	}
}

func TestCheckerFailure(t *testing.T) {
	var out bytes.Buffer
	c := &Checker{Python: fakePython(t, 1), Stdout: &out, Stderr: &out}

	err := c.Run(context.Background(), ModeDryRun, "/tmp/derived.txt")
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got %v", err)
	}
}
