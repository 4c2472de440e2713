package tui

import "github.com/goliatone/go-sinkform/pkg/i18n"

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML emits block style YAML.
	OutputFormatYAML OutputFormat = "yaml"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat maps a flag value onto an OutputFormat, defaulting to
// JSON.
func ParseOutputFormat(raw string) OutputFormat {
	switch OutputFormat(raw) {
	case OutputFormatYAML, OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return OutputFormat(raw)
	default:
		return OutputFormatJSON
	}
}

// Theme captures optional prefixes the renderer applies to messages it
// prints between prompts.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithTranslator resolves validation and prompt messages through t.
func WithTranslator(t i18n.Func) Option {
	return func(r *Renderer) {
		if t != nil {
			r.t = t
		}
	}
}
