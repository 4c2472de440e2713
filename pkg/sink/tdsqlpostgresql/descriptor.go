// Package tdsqlpostgresql describes the TDSQL-PostgreSQL sink: the form an
// operator fills in to point a pipeline at a PostgreSQL table and the columns
// used to map stream fields onto destination columns.
package tdsqlpostgresql

import (
	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/sink/common"
)

// Type is the registry key of the sink.
const Type = "TDSQLPOSTGRESQL"

// FieldNamePattern constrains destination column names to lower snake case.
const FieldNamePattern = `^[a-z][0-9a-z_]*$`

// JDBCPlaceholder is the example URL shown in an empty JDBC URL input.
const JDBCPlaceholder = "jdbc:postgresql://127.0.0.1:5432/db_name"

const (
	// FormatVisibleRule is the rule-string form of HasFormat.
	FormatVisibleRule = "row.fieldType in ['BIGINT', 'DATE', 'TIMESTAMP']"
	// CanDeleteRule allows removing rows while creating a sink, or rows added
	// in the current edit session.
	CanDeleteRule = "!isEdit || isNew"
)

// Descriptor is the TDSQL-PostgreSQL sink descriptor.
type Descriptor struct {
	t            i18n.Func
	tableColumns []model.ColumnSpec
}

var _ sink.Descriptor = (*Descriptor)(nil)

// New builds a descriptor resolving labels through t. The summary columns are
// computed here once and reused by every TableColumns call.
func New(t i18n.Func) *Descriptor {
	if t == nil {
		t = i18n.Identity
	}
	d := &Descriptor{t: t}
	d.tableColumns = d.GetForm(sink.ModeCol, model.FormContext{}).Columns
	return d
}

// Factory adapts New to sink.Factory.
func Factory(t i18n.Func) sink.Descriptor {
	return New(t)
}

// Register adds the descriptor to registry under Type.
func Register(registry *sink.Registry) error {
	return registry.Register(Type, Factory)
}

// Type implements sink.Descriptor.
func (d *Descriptor) Type() string { return Type }

// TableColumns implements sink.Descriptor. Every call returns the same
// backing array; callers must not modify its elements. The slice is capped so
// appends copy instead of growing into it.
func (d *Descriptor) TableColumns() []model.ColumnSpec {
	n := len(d.tableColumns)
	return d.tableColumns[:n:n]
}

// GetForm implements sink.Descriptor.
func (d *Descriptor) GetForm(mode sink.Mode, ctx model.FormContext) sink.FormView {
	t := d.t
	disabled := sink.FrozenField(ctx.IsEdit, ctx.Status())
	frozen := func(model.RowState) model.RenderOptions {
		return model.RenderOptions{Disabled: disabled}
	}
	yesNo := []model.Option{
		{Label: t("basic.Yes"), Value: 1},
		{Label: t("basic.No"), Value: 0},
	}
	isEdit := ctx.IsEdit

	fields := []model.FieldSpec{
		{
			Kind:  model.KindInput,
			Label: "JDBC URL",
			Name:  "jdbcUrl",
			Rules: []model.ValidationRule{model.Required()},
			Props: func(state model.RowState) model.RenderOptions {
				opts := frozen(state)
				opts.Placeholder = JDBCPlaceholder
				opts.Style = map[string]any{"width": 500}
				return opts
			},
			DisabledWhen: sink.FrozenFieldRule,
		},
		{
			Kind:         model.KindInput,
			Label:        t("meta.Sinks.TDSQLPostgreSQL.SchemaName"),
			Name:         "schemaName",
			Rules:        []model.ValidationRule{model.Required()},
			Props:        frozen,
			DisabledWhen: sink.FrozenFieldRule,
			InTable:      true,
		},
		{
			Kind:         model.KindInput,
			Label:        t("meta.Sinks.TDSQLPostgreSQL.TableName"),
			Name:         "tableName",
			Rules:        []model.ValidationRule{model.Required()},
			Props:        frozen,
			DisabledWhen: sink.FrozenFieldRule,
			InTable:      true,
		},
		{
			Kind:         model.KindInput,
			Label:        t("meta.Sinks.TDSQLPostgreSQL.PrimaryKey"),
			Name:         "primaryKey",
			Rules:        []model.ValidationRule{model.Required()},
			Props:        frozen,
			DisabledWhen: sink.FrozenFieldRule,
			InTable:      true,
		},
		{
			Kind:         model.KindRadio,
			Label:        t("meta.Sinks.EnableCreateResource"),
			Name:         "enableCreateResource",
			Rules:        []model.ValidationRule{model.Required()},
			InitialValue: 1,
			Tooltip:      t("meta.Sinks.EnableCreateResourceHelp"),
			Props: func(state model.RowState) model.RenderOptions {
				opts := frozen(state)
				opts.Options = yesNo
				return opts
			},
			DisabledWhen: sink.FrozenFieldRule,
		},
		{
			Kind:         model.KindInput,
			Label:        t("meta.Sinks.Username"),
			Name:         "username",
			Rules:        []model.ValidationRule{model.Required()},
			Props:        frozen,
			DisabledWhen: sink.FrozenFieldRule,
			InTable:      true,
		},
		{
			Kind:  model.KindPassword,
			Label: t("meta.Sinks.Password"),
			Name:  "password",
			Rules: []model.ValidationRule{model.Required()},
			Props: func(state model.RowState) model.RenderOptions {
				opts := frozen(state)
				opts.Style = map[string]any{"maxWidth": 500}
				return opts
			},
			DisabledWhen: sink.FrozenFieldRule,
		},
		{
			Kind: model.KindTable,
			Name: "sinkFieldList",
			Table: &model.TableSpec{
				Size:    "small",
				Columns: d.FieldListColumns(ctx.DataType, ctx.CurrentValues),
				CanDelete: func(state model.RowState) bool {
					return !isEdit || state.IsNew
				},
				CanDeleteWhen: CanDeleteRule,
			},
		},
	}

	return sink.Shape(mode, fields)
}

// FieldListColumns implements sink.Descriptor. The data type does not change
// the columns.
func (d *Descriptor) FieldListColumns(_ string, currentValues map[string]any) []model.ColumnSpec {
	t := d.t
	status := model.StatusOf(currentValues)

	columns := []model.ColumnSpec{
		{
			Title:        "TDSQLPOSTGRESQL" + t("meta.Sinks.TDSQLPostgreSQL.FieldName"),
			DataIndex:    "fieldName",
			Kind:         model.KindInput,
			InitialValue: "",
			Rules: []model.ValidationRule{
				model.Required(),
				model.Pattern(FieldNamePattern, t("meta.Sinks.TDSQLPostgreSQL.FieldNameRule")),
			},
			Props:        common.FrozenColumnProps(status, nil),
			DisabledWhen: common.FrozenColumnRule,
		},
		{
			Title:        "TDSQLPOSTGRESQL" + t("meta.Sinks.TDSQLPostgreSQL.FieldType"),
			DataIndex:    "fieldType",
			Kind:         model.KindSelect,
			InitialValue: FieldTypes[0],
			Rules:        []model.ValidationRule{model.Required()},
			Props:        common.FrozenColumnProps(status, model.StringOptions(FieldTypes...)),
			DisabledWhen: common.FrozenColumnRule,
		},
		{
			Title:        t("meta.Sinks.TDSQLPostgreSQL.IsMetaField"),
			DataIndex:    "isMetaField",
			Kind:         model.KindSelect,
			InitialValue: 0,
			Props: common.FrozenColumnProps(status, []model.Option{
				{Label: t("basic.Yes"), Value: 1},
				{Label: t("basic.No"), Value: 0},
			}),
			DisabledWhen: common.FrozenColumnRule,
		},
		{
			Title:        t("meta.Sinks.TDSQLPostgreSQL.FieldFormat"),
			DataIndex:    "fieldFormat",
			Kind:         model.KindAutocomplete,
			InitialValue: "",
			Props:        model.StaticProps(model.RenderOptions{Options: model.StringOptions(FieldFormats...)}),
			Visible: func(_ any, row map[string]any) bool {
				fieldType, _ := row["fieldType"].(string)
				return HasFormat(fieldType)
			},
			VisibleWhen: FormatVisibleRule,
		},
		{
			Title:        t("meta.Sinks.TDSQLPostgreSQL.FieldDescription"),
			DataIndex:    "fieldComment",
			Kind:         model.KindInput,
			InitialValue: "",
		},
	}

	return append(common.SourceFields(t, currentValues), columns...)
}
