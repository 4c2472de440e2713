package tdsqlpostgresql

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sinkform/pkg/postgres"
)

type fakeStore struct {
	schemas map[string]bool
	tables  map[string][]*postgres.ColumnModel
	created []postgres.TableDef
	added   []postgres.ColumnDef
	calls   []string
	failAdd error
}

func newFakeStore() *fakeStore {
	return &fakeStore{schemas: map[string]bool{}, tables: map[string][]*postgres.ColumnModel{}}
}

func (f *fakeStore) SchemaExists(_ context.Context, schema string) (bool, error) {
	f.calls = append(f.calls, "SchemaExists")
	return f.schemas[schema], nil
}

func (f *fakeStore) CreateSchema(_ context.Context, schema string) error {
	f.calls = append(f.calls, "CreateSchema")
	f.schemas[schema] = true
	return nil
}

func (f *fakeStore) TableExists(_ context.Context, schema, table string) (bool, error) {
	f.calls = append(f.calls, "TableExists")
	_, ok := f.tables[schema+"."+table]
	return ok, nil
}

func (f *fakeStore) ListColumns(_ context.Context, schema, table string) ([]*postgres.ColumnModel, error) {
	f.calls = append(f.calls, "ListColumns")
	return f.tables[schema+"."+table], nil
}

func (f *fakeStore) CreateTable(_ context.Context, def postgres.TableDef) error {
	f.calls = append(f.calls, "CreateTable")
	f.created = append(f.created, def)
	return nil
}

func (f *fakeStore) AddColumns(_ context.Context, _, _ string, cols []postgres.ColumnDef) error {
	f.calls = append(f.calls, "AddColumns")
	if f.failAdd != nil {
		return f.failAdd
	}
	f.added = append(f.added, cols...)
	return nil
}

func sampleConfig() SinkConfig {
	return SinkConfig{
		SchemaName:           "sales",
		TableName:            "orders",
		PrimaryKey:           "id,tenant",
		EnableCreateResource: 1,
		Fields: []FieldConfig{
			{FieldName: "id", FieldType: "BIGINT", FieldComment: "order id"},
			{FieldName: "tenant", FieldType: "VARCHAR"},
			{FieldName: "amount", FieldType: "DOUBLE"},
			{FieldName: "ingested_at", FieldType: "TIMESTAMP", IsMetaField: 1},
		},
	}
}

func TestResourceOperatorSkipsWhenDisabled(t *testing.T) {
	store := newFakeStore()
	cfg := sampleConfig()
	cfg.EnableCreateResource = 0

	result, err := NewResourceOperator(store).Apply(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !result.Skipped || len(store.calls) != 0 {
		t.Fatalf("expected no store calls, got %v (%#v)", store.calls, result)
	}
}

func TestResourceOperatorCreatesSchemaAndTable(t *testing.T) {
	store := newFakeStore()

	result, err := NewResourceOperator(store).Apply(context.Background(), sampleConfig())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(ResourceResult{SchemaCreated: true, TableCreated: true}, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	want := postgres.TableDef{
		Schema: "sales",
		Name:   "orders",
		Columns: []postgres.ColumnDef{
			{Name: "id", Type: "BIGINT", Comment: "order id"},
			{Name: "tenant", Type: "VARCHAR"},
			{Name: "amount", Type: "DOUBLE"},
			{Name: "ingested_at", Type: "TIMESTAMP"},
		},
		PrimaryKey: []string{"id", "tenant"},
	}
	if diff := cmp.Diff([]postgres.TableDef{want}, store.created); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestResourceOperatorAddsMissingColumns(t *testing.T) {
	store := newFakeStore()
	store.schemas["sales"] = true
	store.tables["sales.orders"] = []*postgres.ColumnModel{
		{Name: "id", DataType: "bigint", Position: 1},
		{Name: "TENANT", DataType: "character varying", Position: 2},
	}

	result, err := NewResourceOperator(store).Apply(context.Background(), sampleConfig())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(ResourceResult{AddedColumns: []string{"amount", "ingested_at"}}, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []string{"SchemaExists", "TableExists", "ListColumns", "AddColumns"}
	if diff := cmp.Diff(wantCalls, store.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if len(store.added) != 2 || store.added[0].Type != "DOUBLE" {
		t.Fatalf("unexpected added columns: %#v", store.added)
	}
}

func TestResourceOperatorUpToDateTable(t *testing.T) {
	store := newFakeStore()
	store.schemas["sales"] = true
	for _, f := range sampleConfig().Fields {
		store.tables["sales.orders"] = append(store.tables["sales.orders"], &postgres.ColumnModel{Name: f.FieldName})
	}

	result, err := NewResourceOperator(store).Apply(context.Background(), sampleConfig())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(ResourceResult{}, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestResourceOperatorPropagatesErrors(t *testing.T) {
	store := newFakeStore()
	store.schemas["sales"] = true
	store.tables["sales.orders"] = []*postgres.ColumnModel{{Name: "id"}}
	boom := errors.New("boom")
	store.failAdd = boom

	_, err := NewResourceOperator(store).Apply(context.Background(), sampleConfig())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}

	cfg := sampleConfig()
	cfg.Fields = nil
	if _, err := NewResourceOperator(newFakeStore()).Apply(context.Background(), cfg); !errors.Is(err, ErrMissingFieldList) {
		t.Fatalf("expected ErrMissingFieldList, got %v", err)
	}
}

func TestSinkConfigDSN(t *testing.T) {
	cfg := SinkConfig{JDBCURL: "jdbc:postgresql://db:5432/orders", Username: "u", Password: "p"}
	dsn, err := cfg.DSN()
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	if dsn != "postgres://u:p@db:5432/orders" {
		t.Fatalf("unexpected dsn %q", dsn)
	}

	cfg.JDBCURL = "mysql://db"
	if _, err := cfg.DSN(); !errors.Is(err, postgres.ErrInvalidJDBCURL) {
		t.Fatalf("expected ErrInvalidJDBCURL, got %v", err)
	}
}
