package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/pgxscan"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	pgx "github.com/jackc/pgx/v4"
	"go.uber.org/zap"
)

// ColumnModel is a column of an existing table.
type ColumnModel struct {
	Name     string `db:"column_name"`
	DataType string `db:"data_type"`
	Position int64  `db:"ordinal_position"`
}

// SchemaExists reports whether schema exists in the connected database.
func (c *Client) SchemaExists(ctx context.Context, schema string) (bool, error) {
	var exists bool
	err := pgxscan.Get(ctx, c.db, &exists, `
SELECT EXISTS (
  SELECT 1 FROM "information_schema"."schemata" WHERE "schema_name" = $1
)`, schema)
	if err != nil {
		return false, fmt.Errorf("postgres: lookup schema %q: %w", schema, err)
	}
	return exists, nil
}

// TableExists reports whether schema.table exists.
func (c *Client) TableExists(ctx context.Context, schema, table string) (bool, error) {
	var exists bool
	err := pgxscan.Get(ctx, c.db, &exists, `
SELECT EXISTS (
  SELECT 1 FROM "information_schema"."tables"
  WHERE "table_schema" = $1 AND "table_name" = $2
)`, schema, table)
	if err != nil {
		return false, fmt.Errorf("postgres: lookup table %s: %w", QualifiedName(schema, table), err)
	}
	return exists, nil
}

// ListColumns returns the columns of schema.table in ordinal order.
func (c *Client) ListColumns(ctx context.Context, schema, table string) ([]*ColumnModel, error) {
	l := ctxzap.Extract(ctx)
	l.Debug("listing columns", zap.String("schema", schema), zap.String("table", table))

	var ret []*ColumnModel
	err := pgxscan.Select(ctx, c.db, &ret, `
SELECT "column_name"::text AS "column_name",
       "data_type"::text AS "data_type",
       "ordinal_position"::int AS "ordinal_position"
FROM "information_schema"."columns"
WHERE "table_schema" = $1
  AND "table_name" = $2
ORDER BY "ordinal_position"`, schema, table)
	if err != nil {
		return nil, fmt.Errorf("postgres: list columns of %s: %w", QualifiedName(schema, table), err)
	}
	return ret, nil
}

// CreateSchema creates schema when missing.
func (c *Client) CreateSchema(ctx context.Context, schema string) error {
	return c.execAll(ctx, []string{CreateSchemaSQL(schema)})
}

// CreateTable creates def and its column comments in one transaction.
func (c *Client) CreateTable(ctx context.Context, def TableDef) error {
	return c.execAll(ctx, CreateTableSQL(def))
}

// AddColumns appends cols to schema.table in one transaction.
func (c *Client) AddColumns(ctx context.Context, schema, table string, cols []ColumnDef) error {
	return c.execAll(ctx, AddColumnsSQL(schema, table, cols))
}

func (c *Client) execAll(ctx context.Context, stmts []string) error {
	if len(stmts) == 0 {
		return nil
	}
	l := ctxzap.Extract(ctx)
	return c.db.BeginFunc(ctx, func(tx pgx.Tx) error {
		for _, stmt := range stmts {
			l.Debug("executing ddl", zap.String("sql", stmt))
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("postgres: exec ddl: %w", err)
			}
		}
		return nil
	})
}
