package tdsqlpostgresql

import "slices"

// FieldTypes are the destination column types offered by the field list, in
// display order. The first entry is the default.
var FieldTypes = []string{
	"SMALLINT",
	"SMALLSERIAL",
	"INT2",
	"SERIAL2",
	"INTEGER",
	"SERIAL",
	"BIGINT",
	"BIGSERIAL",
	"REAL",
	"FLOAT4",
	"FLOAT8",
	"DOUBLE",
	"NUMERIC",
	"DECIMAL",
	"BOOLEAN",
	"DATE",
	"TIME",
	"TIMESTAMP",
	"CHAR",
	"CHARACTER",
	"VARCHAR",
	"TEXT",
	"BYTEA",
}

// FieldFormats are the suggestions offered for temporal and epoch columns.
var FieldFormats = []string{"MICROSECONDS", "MILLISECONDS", "SECONDS", "SQL", "ISO_8601"}

// FormattedTypes are the field types whose values carry a format.
var FormattedTypes = []string{"BIGINT", "DATE", "TIMESTAMP"}

// IsFieldType reports whether value is one of FieldTypes.
func IsFieldType(value string) bool {
	return slices.Contains(FieldTypes, value)
}

// HasFormat reports whether a column of fieldType shows the format control.
func HasFormat(fieldType string) bool {
	return slices.Contains(FormattedTypes, fieldType)
}
