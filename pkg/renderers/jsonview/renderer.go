// Package jsonview renders sink form views as JSON or YAML documents, the
// payload the dashboard and the CLI consume.
package jsonview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

const (
	// NameJSON is the registry name of the JSON renderer.
	NameJSON = "json"
	// NameYAML is the registry name of the YAML renderer.
	NameYAML = "yaml"
)

// Document is the serialised shape of a rendered form view. Form mode carries
// Fields, column mode carries Columns.
type Document struct {
	Type       string              `json:"type,omitempty"`
	Mode       sink.Mode           `json:"mode"`
	Locale     string              `json:"locale,omitempty"`
	Fields     []model.FieldView   `json:"fields,omitempty"`
	Columns    []model.ColumnView  `json:"columns,omitempty"`
	Values     map[string]any      `json:"values,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"formErrors,omitempty"`
	Hidden     map[string]string   `json:"hidden,omitempty"`
}

// Build resolves form against the options' context into a Document.
func Build(form sink.FormView, opts render.RenderOptions) Document {
	state := opts.Context.State()
	doc := Document{
		Type:       opts.Title,
		Mode:       form.Mode,
		Locale:     opts.Locale,
		Values:     opts.Values,
		Errors:     opts.Errors,
		FormErrors: opts.FormErrors,
		Hidden:     opts.Hidden,
	}
	if doc.Mode == "" {
		doc.Mode = sink.ModeForm
	}
	if doc.Mode == sink.ModeCol {
		doc.Columns = model.ColumnViews(form.Columns, state)
		return doc
	}
	doc.Fields = model.FieldViews(form.Fields, state)
	return doc
}

// Option customises a renderer.
type Option func(*config)

type config struct {
	indent string
}

// WithIndent sets the JSON indentation. An empty string produces compact
// output.
func WithIndent(indent string) Option {
	return func(cfg *config) {
		cfg.indent = indent
	}
}

// JSON renders Documents as JSON.
type JSON struct {
	cfg config
}

var _ render.Renderer = (*JSON)(nil)

// New constructs the JSON renderer, indented by two spaces unless configured.
func New(options ...Option) *JSON {
	cfg := config{indent: "  "}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &JSON{cfg: cfg}
}

// Name implements render.Renderer.
func (r *JSON) Name() string { return NameJSON }

// ContentType implements render.Renderer.
func (r *JSON) ContentType() string { return "application/json" }

// Render implements render.Renderer.
func (r *JSON) Render(_ context.Context, form sink.FormView, opts render.RenderOptions) ([]byte, error) {
	return marshalJSON(Build(form, opts), r.cfg.indent)
}

// YAML renders Documents as YAML, keeping the key order of the JSON output.
type YAML struct{}

var _ render.Renderer = (*YAML)(nil)

// NewYAML constructs the YAML renderer.
func NewYAML() *YAML {
	return &YAML{}
}

// Name implements render.Renderer.
func (r *YAML) Name() string { return NameYAML }

// ContentType implements render.Renderer.
func (r *YAML) ContentType() string { return "application/yaml" }

// Render implements render.Renderer.
func (r *YAML) Render(_ context.Context, form sink.FormView, opts render.RenderOptions) ([]byte, error) {
	return ToYAML(Build(form, opts))
}

// ToYAML converts any JSON-serialisable value to block style YAML. Going
// through JSON keeps json tags and field order.
func ToYAML(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("jsonview: marshal json: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("jsonview: decode yaml node: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("jsonview: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("jsonview: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

func marshalJSON(value any, indent string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if indent == "" {
		raw, err = json.Marshal(value)
	} else {
		raw, err = json.MarshalIndent(value, "", indent)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview: marshal json: %w", err)
	}
	return append(raw, '\n'), nil
}
