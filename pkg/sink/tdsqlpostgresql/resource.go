package tdsqlpostgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/goliatone/go-sinkform/pkg/postgres"
)

// TableStore is the database surface the resource operator needs.
// *postgres.Client satisfies it.
type TableStore interface {
	SchemaExists(ctx context.Context, schema string) (bool, error)
	CreateSchema(ctx context.Context, schema string) error
	TableExists(ctx context.Context, schema, table string) (bool, error)
	ListColumns(ctx context.Context, schema, table string) ([]*postgres.ColumnModel, error)
	CreateTable(ctx context.Context, def postgres.TableDef) error
	AddColumns(ctx context.Context, schema, table string, cols []postgres.ColumnDef) error
}

var _ TableStore = (*postgres.Client)(nil)

// ResourceResult reports what Apply changed.
type ResourceResult struct {
	Skipped       bool     `json:"skipped"`
	SchemaCreated bool     `json:"schemaCreated"`
	TableCreated  bool     `json:"tableCreated"`
	AddedColumns  []string `json:"addedColumns,omitempty"`
}

// ResourceOperator creates or extends the destination table of a sink.
type ResourceOperator struct {
	store TableStore
}

// NewResourceOperator returns an operator working against store.
func NewResourceOperator(store TableStore) *ResourceOperator {
	return &ResourceOperator{store: store}
}

// TableDef converts the config into the table it describes.
func (c SinkConfig) TableDef() postgres.TableDef {
	cols := make([]postgres.ColumnDef, 0, len(c.Fields))
	for _, f := range c.Fields {
		cols = append(cols, f.ColumnDef())
	}
	return postgres.TableDef{
		Schema:     c.SchemaName,
		Name:       c.TableName,
		Columns:    cols,
		PrimaryKey: c.PrimaryKeys(),
	}
}

// ColumnDef converts a field row into its destination column.
func (f FieldConfig) ColumnDef() postgres.ColumnDef {
	return postgres.ColumnDef{Name: f.FieldName, Type: f.FieldType, Comment: f.FieldComment}
}

// Apply makes sure the destination described by cfg exists. Configs that opt
// out of resource creation are skipped. Existing tables only gain the columns
// they lack; nothing is altered or dropped.
func (o *ResourceOperator) Apply(ctx context.Context, cfg SinkConfig) (ResourceResult, error) {
	l := ctxzap.Extract(ctx).With(
		zap.String("schema", cfg.SchemaName),
		zap.String("table", cfg.TableName),
	)
	if !cfg.CreateResource() {
		l.Info("resource creation disabled, skipping")
		return ResourceResult{Skipped: true}, nil
	}
	if err := cfg.Check(); err != nil {
		return ResourceResult{}, err
	}

	var result ResourceResult
	exists, err := o.store.SchemaExists(ctx, cfg.SchemaName)
	if err != nil {
		return result, err
	}
	if !exists {
		if err := o.store.CreateSchema(ctx, cfg.SchemaName); err != nil {
			return result, err
		}
		result.SchemaCreated = true
		l.Info("created schema")
	}

	exists, err = o.store.TableExists(ctx, cfg.SchemaName, cfg.TableName)
	if err != nil {
		return result, err
	}
	if !exists {
		if err := o.store.CreateTable(ctx, cfg.TableDef()); err != nil {
			return result, err
		}
		result.TableCreated = true
		l.Info("created table", zap.Int("columns", len(cfg.Fields)))
		return result, nil
	}

	current, err := o.store.ListColumns(ctx, cfg.SchemaName, cfg.TableName)
	if err != nil {
		return result, err
	}
	existing := make(map[string]struct{}, len(current))
	for _, col := range current {
		existing[strings.ToLower(col.Name)] = struct{}{}
	}

	var missing []postgres.ColumnDef
	for _, f := range cfg.Fields {
		if _, ok := existing[strings.ToLower(f.FieldName)]; ok {
			continue
		}
		missing = append(missing, f.ColumnDef())
		result.AddedColumns = append(result.AddedColumns, f.FieldName)
	}
	if len(missing) == 0 {
		l.Debug("table already up to date")
		return result, nil
	}
	if err := o.store.AddColumns(ctx, cfg.SchemaName, cfg.TableName, missing); err != nil {
		return ResourceResult{SchemaCreated: result.SchemaCreated}, fmt.Errorf("tdsqlpostgresql: add columns: %w", err)
	}
	l.Info("added columns", zap.Strings("columns", result.AddedColumns))
	return result, nil
}
