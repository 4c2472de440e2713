// Package tui collects sink configuration interactively in a terminal. Each
// form field becomes a prompt; embedded tables are edited row by row.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/renderers/jsonview"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/validation"
)

// Name is the registry name of the TUI renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions. The
// rendered output is the collected record, not a description of the form.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	t                 i18n.Func
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		t:            i18n.Identity,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatYAML:
		return "application/yaml"
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every editable field of form, prefilled from the
// options' context and values, and returns the collected record. Disabled
// fields keep their current value without prompting.
func (r *Renderer) Render(ctx context.Context, form sink.FormView, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if form.Mode == sink.ModeCol {
		return nil, ErrColumnView
	}

	state := NewState(opts.MergedValues(), opts.Errors)
	base := opts.Context.State()
	base.Record = state.Values()

	if opts.Title != "" {
		if err := r.info(ctx, opts.Title); err != nil {
			return nil, err
		}
	}
	for _, message := range opts.FormErrors {
		if err := r.fail(ctx, message); err != nil {
			return nil, err
		}
	}

	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, state, base); err != nil {
			return nil, err
		}
	}

	values := state.Values()
	result := validation.Validate(form.Fields, values, validation.WithState(base), validation.WithTranslator(r.t))
	if !result.Valid {
		messages := make([]string, 0, len(result.Issues))
		for _, issue := range result.Issues {
			messages = append(messages, issue.Path+": "+issue.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(messages, "; "))
	}

	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) promptField(ctx context.Context, field model.FieldSpec, state *State, base model.RowState) error {
	if field.Kind == model.KindTable {
		return r.promptTable(ctx, field, state, base)
	}

	current, ok := state.Get(field.Name)
	if !ok {
		current = field.InitialValue
	}
	props := field.Resolve(base)
	if props.Disabled {
		if current != nil {
			state.Set(field.Name, current)
		}
		return nil
	}

	p := prompt{
		path:    field.Name,
		label:   labelOf(field.Label, field.Name),
		help:    field.Tooltip,
		kind:    field.Kind,
		rules:   field.Rules,
		props:   props,
		current: current,
	}
	value, err := r.ask(ctx, p, state.ErrorsFor(field.Name))
	if err != nil {
		return err
	}
	state.Set(field.Name, value)
	return nil
}

func (r *Renderer) promptTable(ctx context.Context, field model.FieldSpec, state *State, base model.RowState) error {
	if field.Table == nil {
		return nil
	}
	spec := *field.Table
	label := labelOf(field.Label, field.Name)
	for _, message := range state.ErrorsFor(field.Name) {
		if err := r.fail(ctx, label+": "+message); err != nil {
			return err
		}
	}

	existing := state.Rows(field.Name)
	rows := make([]map[string]any, 0, len(existing))
	for index, row := range existing {
		rowState := base
		rowState.Record = row
		rowState.Index = index
		rowState.IsNew = model.IsNewRow(row)

		if spec.CanDelete == nil || spec.CanDelete(rowState) {
			keep, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("%s #%d %s: %s", label, index+1, rowSummary(row, spec.Columns), r.t("tui.KeepRow")),
				Default: true,
			})
			if err != nil {
				return err
			}
			if !keep {
				continue
			}
		}

		path := field.Name + "." + strconv.Itoa(index)
		if err := r.promptRow(ctx, path, spec.Columns, row, rowState, state); err != nil {
			return err
		}
		rows = append(rows, row)
	}

	for {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("%s: %s", label, r.t("tui.AddRow")),
			Default: len(rows) == 0,
		})
		if err != nil {
			return err
		}
		if !add {
			break
		}

		row := make(map[string]any, len(spec.Columns))
		rowState := base
		rowState.Record = row
		rowState.Index = len(rows)
		rowState.IsNew = true

		path := field.Name + "." + strconv.Itoa(len(rows))
		if err := r.promptRow(ctx, path, spec.Columns, row, rowState, state); err != nil {
			return err
		}
		rows = append(rows, row)
	}

	state.SetRows(field.Name, rows)
	return nil
}

// promptRow edits row in place. Visibility is evaluated after each answer so
// a column can depend on an earlier one.
func (r *Renderer) promptRow(ctx context.Context, path string, columns []model.ColumnSpec, row map[string]any, rowState model.RowState, state *State) error {
	for _, column := range columns {
		current, ok := row[column.DataIndex]
		if !ok {
			current = column.InitialValue
		}
		if !column.IsVisible(row) {
			continue
		}
		props := column.Resolve(rowState)
		if props.Disabled {
			if current != nil {
				row[column.DataIndex] = current
			}
			continue
		}

		cellPath := path + "." + column.DataIndex
		p := prompt{
			path:    cellPath,
			label:   labelOf(column.Title, column.DataIndex),
			kind:    column.Kind,
			rules:   column.Rules,
			props:   props,
			current: current,
		}
		value, err := r.ask(ctx, p, state.ErrorsFor(cellPath))
		if err != nil {
			return err
		}
		row[column.DataIndex] = value
	}
	return nil
}

type prompt struct {
	path    string
	label   string
	help    string
	kind    model.FieldKind
	rules   []model.ValidationRule
	props   model.RenderOptions
	current any
}

// ask prompts until the answer passes the value's rules. Prior server errors
// are shown once before the first prompt.
func (r *Renderer) ask(ctx context.Context, p prompt, prior []string) (any, error) {
	for _, message := range prior {
		if err := r.fail(ctx, p.label+": "+message); err != nil {
			return nil, err
		}
	}

	for {
		value, err := r.answer(ctx, p)
		if err != nil {
			return nil, err
		}
		issues := r.check(p, value)
		if len(issues) == 0 {
			return value, nil
		}
		for _, issue := range issues {
			if err := r.fail(ctx, issue.Message); err != nil {
				return nil, err
			}
		}
	}
}

func (r *Renderer) answer(ctx context.Context, p prompt) (any, error) {
	switch p.kind {
	case model.KindRadio, model.KindSelect:
		if len(p.props.Options) > 0 {
			return r.choose(ctx, p)
		}
	case model.KindPassword:
		response, err := r.driver.Password(ctx, InputConfig{Message: p.label, Help: p.help})
		if err != nil {
			return nil, err
		}
		if response == "" && p.current != nil {
			return p.current, nil
		}
		return response, nil
	}

	cfg := InputConfig{
		Message: p.label,
		Default: model.StringValue(p.current),
		Help:    p.help,
	}
	if p.kind == model.KindAutocomplete {
		for _, option := range p.props.Options {
			cfg.Suggestions = append(cfg.Suggestions, model.StringValue(option.Value))
		}
	}
	response, err := r.driver.Input(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(response), nil
}

func (r *Renderer) choose(ctx context.Context, p prompt) (any, error) {
	labels := make([]string, len(p.props.Options))
	defaultIndex := -1
	current := model.StringValue(p.current)
	for i, option := range p.props.Options {
		labels[i] = option.Label
		if p.current != nil && model.StringValue(option.Value) == current {
			defaultIndex = i
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      p.label,
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         p.help,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(p.props.Options) {
		return nil, fmt.Errorf("tui: selection %d out of range for %s", idx, p.path)
	}
	return p.props.Options[idx].Value, nil
}

func (r *Renderer) check(p prompt, value any) []validation.Issue {
	spec := model.FieldSpec{
		Kind:  p.kind,
		Name:  p.path,
		Label: p.label,
		Rules: p.rules,
		Props: model.StaticProps(p.props),
	}
	result := validation.Validate([]model.FieldSpec{spec}, map[string]any{p.path: value}, validation.WithTranslator(r.t))
	return result.Issues
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatYAML:
		return jsonview.ToYAML(values)
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func labelOf(label, fallback string) string {
	if strings.TrimSpace(label) == "" {
		return fallback
	}
	return label
}

func rowSummary(row map[string]any, columns []model.ColumnSpec) string {
	var parts []string
	for _, column := range columns {
		if value := model.StringValue(row[column.DataIndex]); value != "" {
			parts = append(parts, value)
		}
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, " / ")
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(join(prefix, key), val, out)
		}
	case []any:
		for idx, val := range v {
			flatten(join(prefix, strconv.Itoa(idx)), val, out)
		}
	default:
		out.Set(prefix, model.StringValue(v))
	}
}

func prettyPrint(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)

	keys := make([]string, 0, len(flattened))
	for key := range flattened {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, flattened.Get(key))
	}
	return b.String()
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
