// Package testsupport holds helpers shared by package tests: a registry wired
// with the bundled sinks, sample sink records and golden file plumbing.
package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/sink/tdsqlpostgresql"
)

// Registry returns a sink registry backed by the embedded catalogs with every
// bundled sink registered. Testing helpers fail the test on setup errors to
// keep contract tests concise.
func Registry(t testing.TB) *sink.Registry {
	t.Helper()

	catalog, err := i18n.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	registry := sink.NewRegistry(catalog)
	if err := tdsqlpostgresql.Register(registry); err != nil {
		t.Fatalf("register sink: %v", err)
	}
	return registry
}

// Descriptor returns the descriptor registered under kind for locale.
func Descriptor(t testing.TB, kind, locale string) sink.Descriptor {
	t.Helper()

	desc, err := Registry(t).Descriptor(kind, locale)
	if err != nil {
		t.Fatalf("descriptor %s/%s: %v", kind, locale, err)
	}
	return desc
}

// SinkRecord returns a complete TDSQL-PostgreSQL sink record as it arrives
// from a JSON client, numbers decoded as float64.
func SinkRecord() map[string]any {
	return map[string]any{
		"jdbcUrl":              "jdbc:postgresql://127.0.0.1:5432/orders",
		"schemaName":           "public",
		"tableName":            "order_events",
		"primaryKey":           "id",
		"enableCreateResource": float64(1),
		"username":             "inlong",
		"password":             "secret",
		"status":               float64(130),
		"sinkFieldList": []any{
			map[string]any{
				"id":              float64(1),
				"sourceFieldName": "id",
				"sourceFieldType": "long",
				"fieldName":       "id",
				"fieldType":       "BIGINT",
				"isMetaField":     float64(0),
				"fieldFormat":     "",
				"fieldComment":    "row id",
			},
			map[string]any{
				"id":              float64(2),
				"sourceFieldName": "created",
				"sourceFieldType": "string",
				"fieldName":       "created_at",
				"fieldType":       "TIMESTAMP",
				"isMetaField":     float64(0),
				"fieldFormat":     "yyyy-MM-dd HH:mm:ss",
				"fieldComment":    "",
			},
		},
	}
}

// DecodeJSON unmarshals data into a generic value, failing the test on error.
func DecodeJSON(t testing.TB, data []byte) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode json: %v\n%s", err, data)
	}
	return out
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
