package postgres

import (
	"strings"

	pgx "github.com/jackc/pgx/v4"
)

// ColumnDef is a column to create.
type ColumnDef struct {
	Name    string
	Type    string
	Comment string
}

// TableDef is a table to create.
type TableDef struct {
	Schema     string
	Name       string
	Columns    []ColumnDef
	PrimaryKey []string
}

// sqlTypes rewrites type names that are not valid PostgreSQL on their own.
var sqlTypes = map[string]string{
	"DOUBLE": "DOUBLE PRECISION",
}

// SQLType returns the PostgreSQL spelling of a sink field type.
func SQLType(fieldType string) string {
	upper := strings.ToUpper(strings.TrimSpace(fieldType))
	if mapped, ok := sqlTypes[upper]; ok {
		return mapped
	}
	return upper
}

// QualifiedName quotes schema.table.
func QualifiedName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// CreateSchemaSQL creates schema when missing.
func CreateSchemaSQL(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize()
}

// CreateTableSQL renders the CREATE TABLE statement followed by one COMMENT
// statement per commented column.
func CreateTableSQL(def TableDef) []string {
	table := QualifiedName(def.Schema, def.Name)

	parts := make([]string, 0, len(def.Columns)+1)
	for _, col := range def.Columns {
		parts = append(parts, pgx.Identifier{col.Name}.Sanitize()+" "+SQLType(col.Type))
	}
	if len(def.PrimaryKey) > 0 {
		keys := make([]string, 0, len(def.PrimaryKey))
		for _, key := range def.PrimaryKey {
			keys = append(keys, pgx.Identifier{key}.Sanitize())
		}
		parts = append(parts, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")
	}

	stmts := []string{"CREATE TABLE IF NOT EXISTS " + table + " (\n  " + strings.Join(parts, ",\n  ") + "\n)"}
	return append(stmts, commentSQL(def.Schema, def.Name, def.Columns)...)
}

// AddColumnsSQL renders ALTER TABLE statements adding cols, then their
// comments.
func AddColumnsSQL(schema, table string, cols []ColumnDef) []string {
	if len(cols) == 0 {
		return nil
	}
	name := QualifiedName(schema, table)
	stmts := make([]string, 0, len(cols)*2)
	for _, col := range cols {
		stmts = append(stmts, "ALTER TABLE "+name+" ADD COLUMN IF NOT EXISTS "+pgx.Identifier{col.Name}.Sanitize()+" "+SQLType(col.Type))
	}
	return append(stmts, commentSQL(schema, table, cols)...)
}

func commentSQL(schema, table string, cols []ColumnDef) []string {
	var stmts []string
	for _, col := range cols {
		if strings.TrimSpace(col.Comment) == "" {
			continue
		}
		target := pgx.Identifier{schema, table, col.Name}.Sanitize()
		stmts = append(stmts, "COMMENT ON COLUMN "+target+" IS "+quoteLiteral(col.Comment))
	}
	return stmts
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
