package sink

import "github.com/goliatone/go-sinkform/pkg/model"

// ColsFromFields keeps the fields marked InTable and turns them into summary
// columns titled by the field label.
func ColsFromFields(fields []model.FieldSpec) []model.ColumnSpec {
	var cols []model.ColumnSpec
	for _, field := range fields {
		if !field.InTable {
			continue
		}
		cols = append(cols, model.ColumnSpec{
			Title:     field.Label,
			DataIndex: field.Name,
		})
	}
	return cols
}

// StripInternal returns shallow copies of fields without the InTable marker,
// ready for form renderers.
func StripInternal(fields []model.FieldSpec) []model.FieldSpec {
	out := make([]model.FieldSpec, len(fields))
	for i, field := range fields {
		field.InTable = false
		out[i] = field
	}
	return out
}

// Shape applies mode to a field list the way every descriptor's GetForm does.
func Shape(mode Mode, fields []model.FieldSpec) FormView {
	if mode == ModeCol {
		return FormView{Mode: ModeCol, Columns: ColsFromFields(fields)}
	}
	return FormView{Mode: ModeForm, Fields: StripInternal(fields)}
}
