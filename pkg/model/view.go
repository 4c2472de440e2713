package model

// FieldView is the serialisable form of a FieldSpec once its props have been
// resolved against a row state.
type FieldView struct {
	Kind         FieldKind        `json:"type"`
	Label        string           `json:"label,omitempty"`
	Name         string           `json:"name"`
	Rules        []ValidationRule `json:"rules,omitempty"`
	InitialValue any              `json:"initialValue,omitempty"`
	Tooltip      string           `json:"tooltip,omitempty"`
	Props        RenderOptions    `json:"props"`
	DisabledWhen string           `json:"disabledWhen,omitempty"`
	InTable      bool             `json:"_inTable,omitempty"`
	Table        *TableView       `json:"table,omitempty"`
}

// TableView is the serialisable payload of an embedded table field.
type TableView struct {
	Size          string       `json:"size,omitempty"`
	Columns       []ColumnView `json:"columns"`
	CanDelete     bool         `json:"canDelete"`
	CanDeleteNew  bool         `json:"canDeleteNew"`
	CanDeleteWhen string       `json:"canDeleteWhen,omitempty"`
}

// ColumnView is the serialisable form of a ColumnSpec. Props apply to rows
// that already exist; NewRowProps to rows added in the current session.
type ColumnView struct {
	Title        string           `json:"title"`
	DataIndex    string           `json:"dataIndex"`
	Kind         FieldKind        `json:"type,omitempty"`
	InitialValue any              `json:"initialValue,omitempty"`
	Rules        []ValidationRule `json:"rules,omitempty"`
	Props        RenderOptions    `json:"props"`
	NewRowProps  RenderOptions    `json:"newRowProps"`
	DisabledWhen string           `json:"disabledWhen,omitempty"`
	VisibleWhen  string           `json:"visibleWhen,omitempty"`
}

// View resolves the field against state.
func (f FieldSpec) View(state RowState) FieldView {
	view := FieldView{
		Kind:         f.Kind,
		Label:        f.Label,
		Name:         f.Name,
		Rules:        cloneRules(f.Rules),
		InitialValue: f.InitialValue,
		Tooltip:      f.Tooltip,
		Props:        f.Resolve(state),
		DisabledWhen: f.DisabledWhen,
		InTable:      f.InTable,
	}
	if f.Table != nil {
		table := f.Table.View(state)
		view.Table = &table
	}
	return view
}

// View resolves every column of the table against state.
func (t TableSpec) View(state RowState) TableView {
	existing := state
	existing.IsNew = false
	added := state
	added.IsNew = true

	view := TableView{
		Size:          t.Size,
		Columns:       ColumnViews(t.Columns, state),
		CanDelete:     true,
		CanDeleteNew:  true,
		CanDeleteWhen: t.CanDeleteWhen,
	}
	if t.CanDelete != nil {
		view.CanDelete = t.CanDelete(existing)
		view.CanDeleteNew = t.CanDelete(added)
	}
	return view
}

// View resolves the column for existing and new rows.
func (c ColumnSpec) View(state RowState) ColumnView {
	existing := state
	existing.IsNew = false
	added := state
	added.IsNew = true

	return ColumnView{
		Title:        c.Title,
		DataIndex:    c.DataIndex,
		Kind:         c.Kind,
		InitialValue: c.InitialValue,
		Rules:        cloneRules(c.Rules),
		Props:        c.Resolve(existing),
		NewRowProps:  c.Resolve(added),
		DisabledWhen: c.DisabledWhen,
		VisibleWhen:  c.VisibleWhen,
	}
}

// FieldViews resolves a field list.
func FieldViews(fields []FieldSpec, state RowState) []FieldView {
	out := make([]FieldView, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.View(state))
	}
	return out
}

// ColumnViews resolves a column list.
func ColumnViews(columns []ColumnSpec, state RowState) []ColumnView {
	out := make([]ColumnView, 0, len(columns))
	for _, column := range columns {
		out = append(out, column.View(state))
	}
	return out
}

func cloneRules(rules []ValidationRule) []ValidationRule {
	if len(rules) == 0 {
		return nil
	}
	return append([]ValidationRule(nil), rules...)
}
