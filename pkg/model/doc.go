// Package model defines the declarative field and column specifications that
// sink descriptors hand to renderers. A FieldSpec describes one form input; a
// ColumnSpec describes one column of an editable table such as the sink field
// list. Context-dependent rendering (disabling schema-shaping inputs once a
// sink is deployed, hiding the format column for non temporal types) is
// expressed as explicit pure functions of RowState plus an equivalent rule
// string so the resolved views stay serialisable. Embedded tables are a
// tagged variant (KindTable + TableSpec) rather than an opaque component.
package model
