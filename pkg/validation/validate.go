// Package validation checks submitted sink values against the rules declared
// by a descriptor's fields and table columns.
package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/model"
)

// Message keys resolved through the translator.
const (
	KeyRequired = "validation.Required"
	KeyPattern  = "validation.Pattern"
	KeyOption   = "validation.Option"
	KeyRow      = "validation.Row"
)

// Issue is a single validation failure. Path is the dotted location of the
// value: the field name, or list.<row>.<dataIndex> for table cells.
type Issue struct {
	Path    string `json:"path"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result captures the outcome of Validate.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors groups messages by path, the payload shape form renderers consume.
func (r Result) Errors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Path] = append(out[issue.Path], issue.Message)
	}
	return out
}

// Paths lists the failing paths in sorted order.
func (r Result) Paths() []string {
	seen := make(map[string]struct{}, len(r.Issues))
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if _, ok := seen[issue.Path]; ok {
			continue
		}
		seen[issue.Path] = struct{}{}
		out = append(out, issue.Path)
	}
	sort.Strings(out)
	return out
}

// Option customises Validate.
type Option func(*validator)

// WithTranslator resolves messages through t.
func WithTranslator(t i18n.Func) Option {
	return func(v *validator) {
		if t != nil {
			v.t = t
		}
	}
}

// WithState sets the row state used to resolve field options. Table rows
// inherit it with their own index and record.
func WithState(state model.RowState) Option {
	return func(v *validator) {
		v.state = state
	}
}

type validator struct {
	t      i18n.Func
	state  model.RowState
	issues []Issue
}

// Validate checks values against fields. Required rules reject absent and
// blank values, pattern rules apply to non blank values, choice controls
// reject values outside their options and embedded tables are checked row by
// row, skipping columns hidden for that row.
func Validate(fields []model.FieldSpec, values map[string]any, opts ...Option) Result {
	v := &validator{t: i18n.Identity}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if v.state.Record == nil {
		v.state.Record = values
	}

	for _, field := range fields {
		value, present := lookup(values, field.Name)
		if field.Kind == model.KindTable {
			v.table(field, value, present)
			continue
		}
		label := field.Label
		if label == "" {
			label = field.Name
		}
		v.value(field.Name, field.Name, label, field.Kind, field.Rules, field.Resolve(v.state), value, present)
	}

	return Result{Valid: len(v.issues) == 0, Issues: v.issues}
}

func (v *validator) table(field model.FieldSpec, value any, present bool) {
	rows, ok := model.Rows(value)
	if present && value != nil && !ok {
		v.add(field.Name, field.Name, v.format(KeyRow, field.Name))
		return
	}
	if len(rows) == 0 {
		if field.Required() {
			v.add(field.Name, field.Name, v.format(KeyRequired, labelOf(field.Label, field.Name)))
		}
		return
	}
	if field.Table == nil {
		return
	}

	for index, raw := range rows {
		rowPath := field.Name + "." + strconv.Itoa(index)
		row, ok := raw.(map[string]any)
		if !ok {
			v.add(rowPath, field.Name, v.format(KeyRow, rowPath))
			continue
		}
		state := v.state
		state.Record = row
		state.Index = index
		state.IsNew = model.IsNewRow(row)

		for _, column := range field.Table.Columns {
			if !column.IsVisible(row) {
				continue
			}
			cell, cellPresent := row[column.DataIndex]
			v.value(
				rowPath+"."+column.DataIndex,
				column.DataIndex,
				labelOf(column.Title, column.DataIndex),
				column.Kind,
				column.Rules,
				column.Resolve(state),
				cell,
				cellPresent,
			)
		}
	}
}

func (v *validator) value(path, name, label string, kind model.FieldKind, rules []model.ValidationRule, props model.RenderOptions, value any, present bool) {
	blank := !present || isBlank(value)
	for _, rule := range rules {
		switch rule.Kind {
		case model.RuleRequired:
			if blank {
				v.add(path, name, v.ruleMessage(rule, KeyRequired, label))
				return
			}
		case model.RulePattern:
			if blank {
				continue
			}
			ok, err := rule.Match(model.StringValue(value))
			if err != nil || !ok {
				v.add(path, name, v.ruleMessage(rule, KeyPattern, label))
			}
		}
	}
	if blank || len(props.Options) == 0 {
		return
	}
	switch kind {
	case model.KindSelect, model.KindRadio:
		if !hasOption(props.Options, value) {
			v.add(path, name, v.format(KeyOption, label))
		}
	}
}

func (v *validator) ruleMessage(rule model.ValidationRule, key, label string) string {
	if msg := strings.TrimSpace(rule.Message); msg != "" {
		return msg
	}
	return v.format(key, label)
}

// format renders a message template. Translators that return the key itself
// still produce a readable message.
func (v *validator) format(key, label string) string {
	template := v.t(key)
	if template == "" || template == key {
		return key + ": " + label
	}
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, label)
	}
	return template
}

func (v *validator) add(path, field, message string) {
	v.issues = append(v.issues, Issue{Path: path, Field: field, Message: message})
}

func lookup(values map[string]any, name string) (any, bool) {
	if values == nil {
		return nil, false
	}
	value, ok := values[name]
	return value, ok
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func hasOption(options []model.Option, value any) bool {
	want := model.StringValue(value)
	for _, option := range options {
		if model.StringValue(option.Value) == want {
			return true
		}
	}
	return false
}

func labelOf(label, fallback string) string {
	if strings.TrimSpace(label) == "" {
		return fallback
	}
	return label
}
