package openapi

import (
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-sinkform/pkg/model"
)

// ExtensionKey holds the rendering hints of a property.
const ExtensionKey = "x-sinkform"

// FieldsSchema describes the payload collected by fields as an object schema.
// Props are resolved for a fresh record, the state a creation form starts in.
func FieldsSchema(fields []model.FieldSpec) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	var required []string
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		var prop *openapi3.Schema
		if field.Kind == model.KindTable && field.Table != nil {
			prop = openapi3.NewArraySchema().WithItems(ColumnsSchema(field.Table.Columns))
			prop.Extensions = hints(field.Kind, map[string]any{
				"size":          field.Table.Size,
				"canDeleteWhen": field.Table.CanDeleteWhen,
			})
		} else {
			prop = valueSchema(field.Kind, field.Rules, field.Resolve(model.RowState{}), field.InitialValue)
			prop.Extensions = hints(field.Kind, map[string]any{
				"disabledWhen": field.DisabledWhen,
				"tooltip":      field.Tooltip,
			})
		}
		prop.Title = field.Label
		schema.WithProperty(field.Name, prop)
		if field.Required() {
			required = append(required, field.Name)
		}
	}
	if len(required) > 0 {
		schema.WithRequired(required)
	}
	return schema
}

// ColumnsSchema describes one row of an embedded table. Columns that are only
// visible for some rows are never required by the schema.
func ColumnsSchema(columns []model.ColumnSpec) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	var required []string
	for _, column := range columns {
		prop := valueSchema(column.Kind, column.Rules, column.Resolve(model.RowState{IsNew: true}), column.InitialValue)
		prop.Title = column.Title
		prop.Extensions = hints(column.Kind, map[string]any{
			"disabledWhen": column.DisabledWhen,
			"visibleWhen":  column.VisibleWhen,
		})
		schema.WithProperty(column.DataIndex, prop)
		if column.Required() && column.Visible == nil {
			required = append(required, column.DataIndex)
		}
	}
	if len(required) > 0 {
		schema.WithRequired(required)
	}
	return schema
}

func valueSchema(kind model.FieldKind, rules []model.ValidationRule, props model.RenderOptions, initial any) *openapi3.Schema {
	choice := kind == model.KindSelect || kind == model.KindRadio
	if choice && len(props.Options) > 0 && integerOptions(props.Options) {
		schema := openapi3.NewIntegerSchema()
		values := make([]any, 0, len(props.Options))
		for _, option := range props.Options {
			n, _ := model.IntValue(option.Value)
			values = append(values, float64(n))
		}
		schema.WithEnum(values...)
		if n, ok := model.IntValue(initial); ok && initial != nil {
			schema.WithDefault(float64(n))
		}
		return schema
	}

	schema := openapi3.NewStringSchema()
	if choice && len(props.Options) > 0 {
		values := make([]any, 0, len(props.Options))
		for _, option := range props.Options {
			values = append(values, model.StringValue(option.Value))
		}
		schema.WithEnum(values...)
	}
	if text, ok := initial.(string); ok && text != "" {
		schema.WithDefault(text)
	}
	for _, rule := range rules {
		switch rule.Kind {
		case model.RuleRequired:
			schema.WithMinLength(1)
		case model.RulePattern:
			if schema.Pattern == "" {
				schema.WithPattern(rule.Pattern)
			}
		}
	}
	return schema
}

func integerOptions(options []model.Option) bool {
	for _, option := range options {
		if _, isString := option.Value.(string); isString {
			return false
		}
		if _, ok := model.IntValue(option.Value); !ok {
			return false
		}
	}
	return true
}

func hints(kind model.FieldKind, extra map[string]any) map[string]any {
	out := map[string]any{"type": string(kind)}
	for key, value := range extra {
		if text, ok := value.(string); ok && text == "" {
			continue
		}
		out[key] = value
	}
	return map[string]any{ExtensionKey: out}
}

// Issue is a single schema violation.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Check validates a JSON-decoded payload against schema and lists every
// violation.
func Check(schema *openapi3.Schema, payload any) []Issue {
	err := schema.VisitJSON(payload, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return issues(err)
}

func issues(err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Issue
		for _, inner := range multi {
			out = append(out, issues(inner)...)
		}
		return out
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		message := schemaErr.Reason
		if message == "" {
			message = schemaErr.Error()
		}
		return []Issue{{Path: strings.Join(schemaErr.JSONPointer(), "."), Message: message}}
	}
	return []Issue{{Message: err.Error()}}
}

