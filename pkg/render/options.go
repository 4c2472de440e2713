package render

import "github.com/goliatone/go-sinkform/pkg/model"

// RenderOptions describe per-request data renderers use without changing the
// descriptor output.
type RenderOptions struct {
	// Title heads the rendered form, typically the sink type.
	Title string
	// Locale is the catalog locale labels were resolved in.
	Locale string
	// Context is the form context the view was built with. Its state resolves
	// field props; its current values prefill controls.
	Context model.FormContext
	// Values overrides prefilled values by field name.
	Values map[string]any
	// Errors surfaces validation feedback keyed by field path, as produced
	// by MapErrorPayload.
	Errors map[string][]string
	// FormErrors are messages that belong to no single field.
	FormErrors []string
	// Hidden fields are emitted alongside the visible controls.
	Hidden map[string]string
}

// MergedValues returns the context's current values overlaid with Values.
func (o RenderOptions) MergedValues() map[string]any {
	out := make(map[string]any, len(o.Context.CurrentValues)+len(o.Values))
	for key, value := range o.Context.CurrentValues {
		out[key] = value
	}
	for key, value := range o.Values {
		out[key] = value
	}
	return out
}
