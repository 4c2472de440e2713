package sink

import (
	"github.com/goliatone/go-sinkform/pkg/model"
)

// Mode selects how GetForm shapes its output.
type Mode string

const (
	// ModeCol renders the descriptor as summary columns of the sink list.
	ModeCol Mode = "col"
	// ModeForm renders the descriptor as an editable form.
	ModeForm Mode = "form"
)

// ParseMode maps a request value onto a Mode. Anything other than "col" is a
// form request.
func ParseMode(raw string) Mode {
	if Mode(raw) == ModeCol {
		return ModeCol
	}
	return ModeForm
}

// FormView is the result of GetForm: Fields in form mode, Columns in column
// mode.
type FormView struct {
	Mode    Mode
	Fields  []model.FieldSpec
	Columns []model.ColumnSpec
}

// Descriptor is the static metadata a sink type exposes to renderers.
type Descriptor interface {
	// Type is the key the descriptor is registered under.
	Type() string
	// GetForm returns the ordered form fields, or their summary columns in
	// ModeCol.
	GetForm(mode Mode, ctx model.FormContext) FormView
	// FieldListColumns returns the columns of the sink field list table.
	FieldListColumns(dataType string, currentValues map[string]any) []model.ColumnSpec
	// TableColumns returns the summary columns computed once at construction.
	// The result is shared between calls and must not be modified.
	TableColumns() []model.ColumnSpec
}
