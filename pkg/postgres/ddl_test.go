package postgres

import (
	"testing"

	pgx "github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSQLType(t *testing.T) {
	assert.Equal(t, "DOUBLE PRECISION", SQLType("DOUBLE"))
	assert.Equal(t, "DOUBLE PRECISION", SQLType(" double "))
	assert.Equal(t, "BIGINT", SQLType("bigint"))
	assert.Equal(t, "TIMESTAMP", SQLType("TIMESTAMP"))
}

func TestCreateTableSQL(t *testing.T) {
	stmts := CreateTableSQL(TableDef{
		Schema: "sales",
		Name:   "orders",
		Columns: []ColumnDef{
			{Name: "id", Type: "BIGINT", Comment: "order id"},
			{Name: "tenant", Type: "VARCHAR"},
			{Name: "amount", Type: "DOUBLE", Comment: "it's money"},
		},
		PrimaryKey: []string{"id", "tenant"},
	})

	require.Len(t, stmts, 3)
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "sales"."orders" (
  "id" BIGINT,
  "tenant" VARCHAR,
  "amount" DOUBLE PRECISION,
  PRIMARY KEY ("id", "tenant")
)`, stmts[0])
	assert.Equal(t, `COMMENT ON COLUMN "sales"."orders"."id" IS 'order id'`, stmts[1])
	assert.Equal(t, `COMMENT ON COLUMN "sales"."orders"."amount" IS 'it''s money'`, stmts[2])
}

func TestCreateTableSQLWithoutPrimaryKey(t *testing.T) {
	stmts := CreateTableSQL(TableDef{
		Schema:  "public",
		Name:    "events",
		Columns: []ColumnDef{{Name: "payload", Type: "TEXT"}},
	})
	require.Len(t, stmts, 1)
	assert.NotContains(t, stmts[0], "PRIMARY KEY")
}

func TestIdentifiersAreQuoted(t *testing.T) {
	assert.Equal(t, `"we""ird"."t"`, QualifiedName(`we"ird`, "t"))
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "Sales"`, CreateSchemaSQL("Sales"))
}

func TestAddColumnsSQL(t *testing.T) {
	assert.Nil(t, AddColumnsSQL("public", "t", nil))

	stmts := AddColumnsSQL("public", "t", []ColumnDef{
		{Name: "a", Type: "INTEGER"},
		{Name: "b", Type: "DOUBLE", Comment: "b"},
	})
	assert.Equal(t, []string{
		`ALTER TABLE "public"."t" ADD COLUMN IF NOT EXISTS "a" INTEGER`,
		`ALTER TABLE "public"."t" ADD COLUMN IF NOT EXISTS "b" DOUBLE PRECISION`,
		`COMMENT ON COLUMN "public"."t"."b" IS 'b'`,
	}, stmts)
}

func TestLogLevels(t *testing.T) {
	assert.Equal(t, pgx.LogLevel(pgx.LogLevelDebug), PgxLevel(zapcore.DebugLevel))
	assert.Equal(t, pgx.LogLevel(pgx.LogLevelWarn), PgxLevel(zapcore.InfoLevel))
	assert.Equal(t, pgx.LogLevel(pgx.LogLevelError), PgxLevel(zapcore.FatalLevel))

	assert.Equal(t, zapcore.DebugLevel, ZapLevel(pgx.LogLevelTrace))
	assert.Equal(t, zapcore.WarnLevel, ZapLevel(pgx.LogLevelWarn))
	assert.Equal(t, zapcore.ErrorLevel, ZapLevel(pgx.LogLevelNone))

	data := map[string]interface{}{"host": "db", "password": "secret"}
	redacted := redact(data)
	assert.Equal(t, "******", redacted["password"])
	assert.Equal(t, "secret", data["password"])
}
