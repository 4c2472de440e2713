package tdsqlpostgresql

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return values
}

func TestDecodeConfig(t *testing.T) {
	values := decodeJSON(t, `{
  "jdbcUrl": " jdbc:postgresql://127.0.0.1:5432/db ",
  "schemaName": "public",
  "tableName": "orders",
  "primaryKey": "id, tenant",
  "enableCreateResource": "1",
  "username": "writer",
  "password": "secret",
  "status": 130,
  "id": 42,
  "sinkFieldList": [
    {"sourceFieldName": "id", "sourceFieldType": "long", "fieldName": "id", "fieldType": "bigint", "isMetaField": 0, "fieldFormat": "MILLISECONDS"},
    {"sourceFieldName": "tenant", "sourceFieldType": "string", "fieldName": "tenant", "fieldType": "VARCHAR", "fieldComment": "owner"}
  ]
}`)

	cfg, err := DecodeConfig(values)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}

	want := SinkConfig{
		JDBCURL:              "jdbc:postgresql://127.0.0.1:5432/db",
		SchemaName:           "public",
		TableName:            "orders",
		PrimaryKey:           "id, tenant",
		EnableCreateResource: 1,
		Username:             "writer",
		Password:             "secret",
		Status:               130,
		Fields: []FieldConfig{
			{SourceFieldName: "id", SourceFieldType: "long", FieldName: "id", FieldType: "BIGINT", FieldFormat: "MILLISECONDS"},
			{SourceFieldName: "tenant", SourceFieldType: "string", FieldName: "tenant", FieldType: "VARCHAR", FieldComment: "owner"},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if !cfg.CreateResource() {
		t.Fatalf("expected resource creation enabled")
	}
	if diff := cmp.Diff([]string{"id", "tenant"}, cfg.PrimaryKeys()); diff != "" {
		t.Fatalf("primary keys mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestDecodeConfigRejectsWrongShapes(t *testing.T) {
	_, err := DecodeConfig(map[string]any{"sinkFieldList": "nope"})
	if err == nil {
		t.Fatalf("expected decoding error")
	}
	if !strings.HasPrefix(err.Error(), "tdsqlpostgresql: decode config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSinkConfigCheck(t *testing.T) {
	base := func() SinkConfig {
		return SinkConfig{
			SchemaName: "public",
			TableName:  "t",
			PrimaryKey: "a",
			Fields: []FieldConfig{
				{FieldName: "a", FieldType: "INTEGER"},
				{FieldName: "b", FieldType: "TEXT"},
			},
		}
	}

	cfg := base()
	cfg.Fields = nil
	if err := cfg.Check(); !errors.Is(err, ErrMissingFieldList) {
		t.Fatalf("expected ErrMissingFieldList, got %v", err)
	}

	cases := map[string]func(*SinkConfig){
		"missing table":   func(c *SinkConfig) { c.TableName = "" },
		"unknown type":    func(c *SinkConfig) { c.Fields[1].FieldType = "MONEY" },
		"duplicate field": func(c *SinkConfig) { c.Fields[1].FieldName = "a" },
		"unnamed field":   func(c *SinkConfig) { c.Fields[0].FieldName = "" },
		"undeclared key":  func(c *SinkConfig) { c.PrimaryKey = "a,z" },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(&cfg)
		if err := cfg.Check(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
