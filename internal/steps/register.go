package steps

import (
	"github.com/email2jira/email2jira/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})

	r.Register("parse", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewParse(deps), nil
	})

	r.Register("create_ticket", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewCreateTicket(deps), nil
	})

	r.Register("attach", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewAttach(deps), nil
	})

	r.Register("mark_read", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewMarkRead(deps), nil
	})

	r.Register("preview", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewPreview(deps), nil
	})
}
