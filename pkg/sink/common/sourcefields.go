// Package common holds the column prefix shared by every relational sink's
// field list.
package common

import (
	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

// SourceFieldNamePattern constrains source field names.
const SourceFieldNamePattern = `^[a-zA-Z_][a-zA-Z0-9_]*$`

// SourceFieldTypes are the stream-side field types a sink field maps from.
var SourceFieldTypes = []string{
	"string",
	"int",
	"long",
	"float",
	"double",
	"date",
	"timestamp",
}

// FrozenColumnRule disables a column on rows that existed before the sink was
// frozen.
const FrozenColumnRule = "!isNew && " + sink.FrozenRule

// FrozenColumn is the disabled gate every frozen-on-deploy column shares:
// the sink status is frozen and the row predates the current edit session.
func FrozenColumn(status int, state model.RowState) bool {
	return sink.Frozen(status) && !state.IsNew
}

// FrozenColumnProps returns props carrying options, disabled per FrozenColumn.
func FrozenColumnProps(status int, options []model.Option) model.PropsFunc {
	return func(state model.RowState) model.RenderOptions {
		return model.RenderOptions{
			Options:  options,
			Disabled: FrozenColumn(status, state),
		}
	}
}

// SourceFields returns the prefix columns naming the source field each sink
// field is fed from. currentValues is the enclosing sink record.
func SourceFields(t i18n.Func, currentValues map[string]any) []model.ColumnSpec {
	if t == nil {
		t = i18n.Identity
	}
	status := model.StatusOf(currentValues)

	return []model.ColumnSpec{
		{
			Title:        t("meta.Sinks.SourceFieldName"),
			DataIndex:    "sourceFieldName",
			Kind:         model.KindInput,
			InitialValue: "",
			Rules: []model.ValidationRule{
				model.Required(),
				model.Pattern(SourceFieldNamePattern, t("meta.Sinks.SourceFieldNameRule")),
			},
			Props:        FrozenColumnProps(status, nil),
			DisabledWhen: FrozenColumnRule,
		},
		{
			Title:        t("meta.Sinks.SourceFieldType"),
			DataIndex:    "sourceFieldType",
			Kind:         model.KindSelect,
			InitialValue: SourceFieldTypes[0],
			Rules:        []model.ValidationRule{model.Required()},
			Props:        FrozenColumnProps(status, model.StringOptions(SourceFieldTypes...)),
			DisabledWhen: FrozenColumnRule,
		},
	}
}
