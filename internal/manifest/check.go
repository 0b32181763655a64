package manifest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ErrCheckFailed indicates the package-manager verification itself failed,
// as opposed to the validation gate rejecting an empty derived list.
var ErrCheckFailed = errors.New("dependency check failed")

// Mode selects how the derived list is verified.
type Mode string

const (
	// ModeDryRun simulates installation without mutating the environment.
	ModeDryRun Mode = "dry-run"

	// ModeCheck simulates installation and additionally verifies that the
	// installed environment has consistent dependencies.
	ModeCheck Mode = "check"
)

// ParseMode validates a mode string from the CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDryRun, ModeCheck:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown check mode %q (want %q or %q)", s, ModeDryRun, ModeCheck)
	}
}

// Checker runs pip in non-mutating verification modes against a derived
// manifest.
type Checker struct {
	// Python is the interpreter used to invoke pip. Defaults to "python3".
	Python string

	// Stdout and Stderr receive the tool's output. Default to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (c *Checker) python() string {
	if c.Python != "" {
		return c.Python
	}
	return "python3"
}

func (c *Checker) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.python(), args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return cmd.Run()
}

// Run verifies the derived manifest at path. A non-zero exit from pip is
// surfaced as ErrCheckFailed so callers can distinguish it from the
// validation-gate failure.
func (c *Checker) Run(ctx context.Context, mode Mode, path string) error {
	if err := c.run(ctx, "-m", "pip", "install", "--dry-run", "--requirement", path); err != nil {
		return fmt.Errorf("%w: pip install --dry-run: %v", ErrCheckFailed, err)
	}
	if mode == ModeCheck {
		if err := c.run(ctx, "-m", "pip", "check"); err != nil {
			return fmt.Errorf("%w: pip check: %v", ErrCheckFailed, err)
		}
	}
	return nil
}
