package vanilla

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

type page struct {
	Title      string
	Locale     string
	Mode       string
	Stylesheet string
	Hidden     []render.HiddenField
	FormErrors []string
	Fields     []control
	Columns    []columnHead
	Summary    []string
}

type control struct {
	ID          string
	Name        string
	Label       string
	Kind        string
	Required    bool
	Disabled    bool
	Hidden      bool
	Placeholder string
	Pattern     string
	Value       string
	Style       string
	Tooltip     string
	Options     []option
	Errors      []string
	IsTable     bool
	Table       tableView
}

type option struct {
	Label    string
	Value    string
	Selected bool
}

type tableView struct {
	Size    string
	Columns []columnHead
	Rows    []tableRow
}

type columnHead struct {
	Title     string
	DataIndex string
	Required  bool
}

type tableRow struct {
	Index     int
	New       bool
	CanDelete bool
	Cells     []control
	Errors    []string
}

type pageBuilder struct {
	policy *bluemonday.Policy
	opts   render.RenderOptions
	values map[string]any
	state  model.RowState
}

func buildPage(form sink.FormView, opts render.RenderOptions, stylesheet string, policy *bluemonday.Policy) page {
	b := pageBuilder{
		policy: policy,
		opts:   opts,
		values: opts.MergedValues(),
		state:  opts.Context.State(),
	}
	out := page{
		Title:      opts.Title,
		Locale:     opts.Locale,
		Mode:       string(form.Mode),
		Stylesheet: stylesheet,
		FormErrors: opts.FormErrors,
	}
	if out.Locale == "" {
		out.Locale = "en"
	}
	if form.Mode == sink.ModeCol {
		for _, column := range form.Columns {
			out.Columns = append(out.Columns, columnHead{Title: column.Title, DataIndex: column.DataIndex})
		}
		if len(b.values) > 0 {
			for _, column := range form.Columns {
				out.Summary = append(out.Summary, model.StringValue(b.values[column.DataIndex]))
			}
		}
		return out
	}

	out.Mode = string(sink.ModeForm)
	hidden := render.MergeHiddenFields(opts.Hidden, render.ContextHidden(opts)...)
	out.Hidden = render.SortedHiddenFields(hidden)
	for _, field := range form.Fields {
		out.Fields = append(out.Fields, b.field(field))
	}
	return out
}

func (b pageBuilder) field(field model.FieldSpec) control {
	props := field.Resolve(b.state)
	value, ok := b.values[field.Name]
	if !ok {
		value = field.InitialValue
	}

	out := b.control(field.Name, field.Kind, props, field.Rules, value)
	out.Label = field.Label
	out.Tooltip = b.sanitize(field.Tooltip)
	out.Errors = b.opts.Errors[field.Name]
	if field.Kind == model.KindTable && field.Table != nil {
		out.IsTable = true
		out.Value = ""
		out.Table = b.table(field.Name, *field.Table, value)
	}
	return out
}

func (b pageBuilder) table(name string, spec model.TableSpec, value any) tableView {
	out := tableView{Size: spec.Size}
	if out.Size == "" {
		out.Size = "default"
	}
	for _, column := range spec.Columns {
		out.Columns = append(out.Columns, columnHead{
			Title:     column.Title,
			DataIndex: column.DataIndex,
			Required:  column.Required(),
		})
	}

	rows, _ := model.Rows(value)
	for index, raw := range rows {
		row, _ := raw.(map[string]any)
		state := b.state
		state.Record = row
		state.Index = index
		state.IsNew = model.IsNewRow(row)

		rowPath := name + "." + strconv.Itoa(index)
		tr := tableRow{
			Index:     index,
			New:       state.IsNew,
			CanDelete: spec.CanDelete == nil || spec.CanDelete(state),
			Errors:    b.opts.Errors[rowPath],
		}
		for _, column := range spec.Columns {
			cellValue, ok := row[column.DataIndex]
			if !ok {
				cellValue = column.InitialValue
			}
			path := rowPath + "." + column.DataIndex
			cell := b.control(path, column.Kind, column.Resolve(state), column.Rules, cellValue)
			cell.Label = column.Title
			cell.Hidden = !column.IsVisible(row)
			cell.Errors = b.opts.Errors[path]
			tr.Cells = append(tr.Cells, cell)
		}
		out.Rows = append(out.Rows, tr)
	}
	return out
}

func (b pageBuilder) control(name string, kind model.FieldKind, props model.RenderOptions, rules []model.ValidationRule, value any) control {
	if kind == "" {
		kind = model.KindInput
	}
	out := control{
		ID:          controlID(name),
		Name:        name,
		Kind:        string(kind),
		Disabled:    props.Disabled,
		Placeholder: props.Placeholder,
		Style:       inlineStyle(props.Style),
		Value:       model.StringValue(value),
	}
	for _, rule := range rules {
		switch rule.Kind {
		case model.RuleRequired:
			out.Required = true
		case model.RulePattern:
			if out.Pattern == "" {
				out.Pattern = rule.Pattern
			}
		}
	}
	if kind == model.KindPassword {
		out.Value = ""
	}
	for _, opt := range props.Options {
		optValue := model.StringValue(opt.Value)
		out.Options = append(out.Options, option{
			Label:    opt.Label,
			Value:    optValue,
			Selected: value != nil && optValue == out.Value,
		})
	}
	return out
}

func (b pageBuilder) sanitize(raw string) string {
	if raw == "" || b.policy == nil {
		return raw
	}
	return strings.TrimSpace(b.policy.Sanitize(raw))
}

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "sf-" + strings.ReplaceAll(trimmed, ".", "-")
}

// inlineStyle renders a React style object as CSS declarations. Unitless
// numbers become pixels.
func inlineStyle(style map[string]any) string {
	if len(style) == 0 {
		return ""
	}
	keys := make([]string, 0, len(style))
	for key := range style {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := style[key]
		rendered := model.StringValue(value)
		if _, numeric := model.IntValue(value); numeric {
			if _, isString := value.(string); !isString {
				rendered += "px"
			}
		}
		parts = append(parts, fmt.Sprintf("%s: %s", kebab(key), rendered))
	}
	return strings.Join(parts, "; ")
}

func kebab(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
