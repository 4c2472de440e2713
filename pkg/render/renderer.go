// Package render defines the contract shared by the output formats a sink
// form can be rendered to, and the helpers they have in common.
package render

import (
	"context"

	"github.com/goliatone/go-sinkform/pkg/sink"
)

// Renderer converts a sink form view into a byte representation (JSON, YAML,
// HTML, or an interactive terminal session).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form sink.FormView, options RenderOptions) ([]byte, error)
}
