package openapi_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/openapi"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/sink/tdsqlpostgresql"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

const validPayload = `{
  "jdbcUrl": "jdbc:postgresql://127.0.0.1:5432/db",
  "schemaName": "public",
  "tableName": "orders",
  "primaryKey": "id",
  "enableCreateResource": 1,
  "username": "writer",
  "password": "secret",
  "status": 130,
  "sinkFieldList": [
    {"sourceFieldName": "id", "sourceFieldType": "long", "fieldName": "id", "fieldType": "BIGINT", "isMetaField": 0}
  ]
}`

func TestSinkSchemaShape(t *testing.T) {
	schema := openapi.SinkSchema(tdsqlpostgresql.New(i18n.Identity))

	if schema.Title != tdsqlpostgresql.Type {
		t.Fatalf("unexpected title %q", schema.Title)
	}
	want := []string{"jdbcUrl", "schemaName", "tableName", "primaryKey", "enableCreateResource", "username", "password"}
	if diff := cmp.Diff(want, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	create := schema.Properties["enableCreateResource"].Value
	if !create.Type.Is("integer") {
		t.Fatalf("expected integer radio, got %v", create.Type)
	}
	if diff := cmp.Diff([]any{float64(1), float64(0)}, create.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}

	rows := schema.Properties["sinkFieldList"].Value
	if !rows.Type.Is("array") || rows.Items == nil {
		t.Fatalf("expected array of rows")
	}
	row := rows.Items.Value
	wantRow := []string{"sourceFieldName", "sourceFieldType", "fieldName", "fieldType"}
	if diff := cmp.Diff(wantRow, row.Required); diff != "" {
		t.Fatalf("row required mismatch (-want +got):\n%s", diff)
	}
	if got := row.Properties["fieldName"].Value.Pattern; got != tdsqlpostgresql.FieldNamePattern {
		t.Fatalf("unexpected pattern %q", got)
	}
	hints, _ := row.Properties["fieldFormat"].Value.Extensions[openapi.ExtensionKey].(map[string]any)
	if hints["visibleWhen"] != tdsqlpostgresql.FormatVisibleRule {
		t.Fatalf("expected visibility hint, got %#v", hints)
	}
}

func TestCheckPayloads(t *testing.T) {
	schema := openapi.SinkSchema(tdsqlpostgresql.New(i18n.Identity))

	if issues := openapi.Check(schema, decode(t, validPayload)); len(issues) != 0 {
		t.Fatalf("expected valid payload, got %#v", issues)
	}

	invalid := decode(t, validPayload).(map[string]any)
	invalid["enableCreateResource"] = float64(2)
	invalid["sinkFieldList"].([]any)[0].(map[string]any)["fieldName"] = "Bad"
	delete(invalid, "username")

	issues := openapi.Check(schema, invalid)
	paths := map[string]bool{}
	for _, issue := range issues {
		paths[issue.Path] = true
	}
	for _, want := range []string{"enableCreateResource", "sinkFieldList.0.fieldName"} {
		if !paths[want] {
			t.Fatalf("expected an issue at %s, got %#v", want, issues)
		}
	}
	if len(issues) < 3 {
		t.Fatalf("expected the missing username to be reported, got %#v", issues)
	}
}

func TestDocumentValidates(t *testing.T) {
	catalog, err := i18n.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	registry := sink.NewRegistry(catalog)
	if err := tdsqlpostgresql.Register(registry); err != nil {
		t.Fatalf("register: %v", err)
	}

	doc, err := openapi.Document(registry, "en", "1.0.0")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("document is invalid: %v", err)
	}
	if doc.Paths.Value("/sinks/TDSQLPOSTGRESQL/validate") == nil {
		t.Fatalf("expected validate path")
	}
	title := doc.Components.Schemas[tdsqlpostgresql.Type].Value.Properties["schemaName"].Value.Title
	if title != "Schema name" {
		t.Fatalf("expected translated property title, got %q", title)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("invalid json output")
	}
}
