// Package vanilla renders sink forms as self-contained HTML previews using
// pongo2 templates and inline styles. No JavaScript is required.
package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

const formTemplate = "templates/form.tmpl"

// Option customises the renderer configuration.
type Option func(*config)

type config struct {
	templateFS fs.FS
	stylesheet *string
	policy     *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/form.tmpl and templates/control.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithStylesheet replaces the inlined stylesheet. An empty string disables
// it.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = &css
	}
}

// WithSanitizer overrides the policy applied to tooltips before they are
// emitted unescaped.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer renders HTML previews of sink forms.
type Renderer struct {
	set        *pongo2.TemplateSet
	stylesheet string
	policy     *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options. Templates are
// parsed eagerly so malformed bundles fail here.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), policy: bluemonday.UGCPolicy()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	stylesheet := defaultStylesheet()
	if cfg.stylesheet != nil {
		stylesheet = *cfg.stylesheet
	}

	r := &Renderer{
		set:        pongo2.NewSet("sinkform", pongo2.NewFSLoader(cfg.templateFS)),
		stylesheet: stylesheet,
		policy:     cfg.policy,
	}
	if _, err := r.set.FromCache(formTemplate); err != nil {
		return nil, fmt.Errorf("vanilla renderer: load template %q: %w", formTemplate, err)
	}
	return r, nil
}

// Name implements render.Renderer.
func (r *Renderer) Name() string {
	return Name
}

// ContentType implements render.Renderer.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render implements render.Renderer.
func (r *Renderer) Render(_ context.Context, form sink.FormView, opts render.RenderOptions) ([]byte, error) {
	if r == nil || r.set == nil {
		return nil, fmt.Errorf("vanilla renderer: template set is nil")
	}
	tmpl, err := r.set.FromCache(formTemplate)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: load template %q: %w", formTemplate, err)
	}

	var buf bytes.Buffer
	data := pongo2.Context{"page": buildPage(form, opts, r.stylesheet, r.policy)}
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return buf.Bytes(), nil
}
