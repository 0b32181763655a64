package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/email2jira/email2jira/internal/core/config"
)

type fakeStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *fakeStep) Name() string { return s.name }
func (s *fakeStep) Run(ctx *Context) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func newTestContext() *Context {
	return NewContext(context.Background(), &Email{ID: "1", Subject: "hello"}, &config.Config{})
}

func TestPipelineRunsStepsInOrder(t *testing.T) {
	var ran []string
	p := New(
		&fakeStep{name: "a", ran: &ran},
		&fakeStep{name: "b", ran: &ran},
	)
	if err := p.Run(newTestContext()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(ran) != 2 || ran[0] != "a" || ran[1] != "b" {
		t.Fatalf("steps ran = %v", ran)
	}
}

func TestPipelineStopsOnError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	p := New(
		&fakeStep{name: "a", err: boom, ran: &ran},
		&fakeStep{name: "b", ran: &ran},
	)
	err := p.Run(newTestContext())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if len(ran) != 1 {
		t.Fatalf("pipeline should stop at the failing step, ran %v", ran)
	}
}

func TestPipelineSkipIsGraceful(t *testing.T) {
	var ran []string
	p := New(
		&fakeStep{name: "a", err: ErrSkipPipeline, ran: &ran},
		&fakeStep{name: "b", ran: &ran},
	)
	if err := p.Run(newTestContext()); err != nil {
		t.Fatalf("skip should not surface as error, got %v", err)
	}
	if len(ran) != 1 {
		t.Fatalf("skip should stop remaining steps, ran %v", ran)
	}
}

func TestRegistryBuildFromNames(t *testing.T) {
	r := NewRegistry()
	var ran []string
	r.Register("one", func(deps *Dependencies) (Step, error) {
		return &fakeStep{name: "one", ran: &ran}, nil
	})

	p, err := r.BuildFromNames([]string{"one"}, &Dependencies{})
	if err != nil {
		t.Fatalf("BuildFromNames() error: %v", err)
	}
	if len(p.Steps()) != 1 {
		t.Fatalf("expected 1 step, got %d", len(p.Steps()))
	}

	if _, err := r.BuildFromNames([]string{"missing"}, &Dependencies{}); err == nil {
		t.Fatal("unknown step should error")
	}
}

func TestResolveSteps(t *testing.T) {
	if got := ResolveSteps([]string{"parse"}, "ticket"); len(got) != 1 || got[0] != "parse" {
		t.Fatalf("explicit steps should win, got %v", got)
	}
	if got := ResolveSteps(nil, "preview"); got[len(got)-1] != "mark_read" {
		t.Fatalf("preview preset = %v", got)
	}
	if got := ResolveSteps(nil, "unknown"); got[0] != "gatekeeper" {
		t.Fatalf("unknown workflow should fall back to ticket preset, got %v", got)
	}
}

func TestNewContext(t *testing.T) {
	ctx := newTestContext()
	if ctx.Result.RunID == "" {
		t.Error("expected a run ID")
	}
	if ctx.Result.EmailID != "1" || ctx.Result.Summary != "hello" {
		t.Errorf("result seeded incorrectly: %+v", ctx.Result)
	}
}
