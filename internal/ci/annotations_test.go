package ci

import (
	"bytes"
	"os"
	"testing"
)

func TestAnnotationsUnderActions(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = os.Stdout }()

	Errorf("no valid packages found in %s", "requirements.txt")
	Noticef("found %d packages", 3)

	want := "::error::no valid packages found in requirements.txt\n::notice::found 3 packages\n"
	if buf.String() != want {
		t.Fatalf("annotations = %q, want %q", buf.String(), want)
	}
}

func TestAnnotationsPlain(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = os.Stdout }()

	Errorf("boom")

	if buf.String() != "error: boom\n" {
		t.Fatalf("plain output = %q", buf.String())
	}
}
