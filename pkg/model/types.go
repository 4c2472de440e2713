package model

// FieldKind is the closed set of rendering tags a field or column can carry.
type FieldKind string

const (
	KindInput        FieldKind = "input"
	KindPassword     FieldKind = "password"
	KindRadio        FieldKind = "radio"
	KindSelect       FieldKind = "select"
	KindAutocomplete FieldKind = "autocomplete"
	KindTable        FieldKind = "table"
)

// Valid reports whether the kind is one of the known rendering tags.
func (k FieldKind) Valid() bool {
	switch k {
	case KindInput, KindPassword, KindRadio, KindSelect, KindAutocomplete, KindTable:
		return true
	default:
		return false
	}
}

// Option is a single entry of a radio, select or autocomplete control.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// StringOptions builds options whose label and value are the same string.
func StringOptions(values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, value := range values {
		out = append(out, Option{Label: value, Value: value})
	}
	return out
}

// RenderOptions is the resolved option bag a renderer applies to a control.
type RenderOptions struct {
	Disabled    bool           `json:"disabled,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []Option       `json:"options,omitempty"`
	Style       map[string]any `json:"style,omitempty"`
}

// PropsFunc resolves render options for a given row state. Implementations
// must be pure.
type PropsFunc func(state RowState) RenderOptions

// StaticProps wraps a fixed option bag.
func StaticProps(opts RenderOptions) PropsFunc {
	return func(RowState) RenderOptions {
		return opts
	}
}

// VisibleFunc decides whether a column is shown for the given cell value and
// row record.
type VisibleFunc func(value any, row map[string]any) bool

// DeleteFunc decides whether a row of an embedded table may be removed.
type DeleteFunc func(state RowState) bool

// FieldSpec describes one form input.
type FieldSpec struct {
	Kind         FieldKind
	Label        string
	Name         string
	Rules        []ValidationRule
	InitialValue any
	Tooltip      string
	Props        PropsFunc
	// DisabledWhen is the rule equivalent of the disabled flag produced by
	// Props, evaluated against the form context.
	DisabledWhen string
	// InTable marks the field as a summary column. It never reaches form
	// renderers.
	InTable bool
	Table   *TableSpec
}

// TableSpec is the payload of a KindTable field.
type TableSpec struct {
	Columns       []ColumnSpec
	Size          string
	CanDelete     DeleteFunc
	CanDeleteWhen string
}

// ColumnSpec describes one column of an editable table or of a summary list.
type ColumnSpec struct {
	Title        string
	DataIndex    string
	Kind         FieldKind
	InitialValue any
	Rules        []ValidationRule
	Props        PropsFunc
	DisabledWhen string
	Visible      VisibleFunc
	VisibleWhen  string
}

// Resolve evaluates the field props for state. Fields without props resolve
// to the zero option bag.
func (f FieldSpec) Resolve(state RowState) RenderOptions {
	if f.Props == nil {
		return RenderOptions{}
	}
	return f.Props(state)
}

// Resolve evaluates the column props for state.
func (c ColumnSpec) Resolve(state RowState) RenderOptions {
	if c.Props == nil {
		return RenderOptions{}
	}
	return c.Props(state)
}

// IsVisible reports whether the column applies to row. Columns without a
// predicate are always visible.
func (c ColumnSpec) IsVisible(row map[string]any) bool {
	if c.Visible == nil {
		return true
	}
	var value any
	if row != nil {
		value = row[c.DataIndex]
	}
	return c.Visible(value, row)
}

// Required reports whether any rule marks the field as required.
func (f FieldSpec) Required() bool {
	return hasRequired(f.Rules)
}

// Required reports whether any rule marks the column as required.
func (c ColumnSpec) Required() bool {
	return hasRequired(c.Rules)
}

func hasRequired(rules []ValidationRule) bool {
	for _, rule := range rules {
		if rule.Kind == RuleRequired {
			return true
		}
	}
	return false
}
