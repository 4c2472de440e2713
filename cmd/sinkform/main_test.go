package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-sinkform/pkg/config"
	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/renderers/jsonview"
	"github.com/goliatone/go-sinkform/pkg/testsupport"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func recordJSON(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(testsupport.SinkRecord())
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(data)
}

func TestFormCommand_FrozenEdit(t *testing.T) {
	out, err := run(t, "", "form", "tdsqlpostgresql", "--edit", "--status", "130")
	if err != nil {
		t.Fatalf("form: %v", err)
	}

	var doc jsonview.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(doc.Fields) == 0 || !doc.Fields[0].Props.Disabled {
		t.Fatalf("expected frozen fields, got %#v", doc.Fields)
	}
	if doc.Hidden["status"] != "130" {
		t.Fatalf("expected the status to be carried as a hidden field, got %#v", doc.Hidden)
	}
}

func TestFormCommand_Formats(t *testing.T) {
	out, err := run(t, "", "form", "TDSQLPOSTGRESQL", "--mode", "col", "--format", "yaml")
	if err != nil {
		t.Fatalf("form yaml: %v", err)
	}
	if !strings.Contains(out, "mode: col") || !strings.Contains(out, "Schema name") {
		t.Fatalf("unexpected yaml output:\n%s", out)
	}

	file := filepath.Join(t.TempDir(), "form.html")
	out, err = run(t, recordJSON(t), "form", "TDSQLPOSTGRESQL", "--format", "html", "--values", "-", "-o", file)
	if err != nil {
		t.Fatalf("form html: %v", err)
	}
	if out != "" {
		t.Fatalf("expected nothing on stdout when writing a file, got %q", out)
	}
	html, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(html), "<form") || !strings.Contains(string(html), "order_events") {
		t.Fatalf("expected a prefilled form, got:\n%s", html)
	}

	if _, err := run(t, "", "form", "TDSQLPOSTGRESQL", "--format", "pdf"); err == nil {
		t.Fatalf("expected an unknown renderer to fail")
	}
}

func TestColumnsCommand_FreezesExistingRows(t *testing.T) {
	out, err := run(t, "", "columns", "TDSQLPOSTGRESQL", "--status", "110")
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	var columns []model.ColumnView
	if err := json.Unmarshal([]byte(out), &columns); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	for _, column := range columns {
		if column.DataIndex == "fieldName" {
			if !column.Props.Disabled || column.NewRowProps.Disabled {
				t.Fatalf("unexpected fieldName props: %#v", column)
			}
			return
		}
	}
	t.Fatalf("fieldName column missing")
}

func TestListAndSchemaCommands(t *testing.T) {
	out, err := run(t, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var sinks []struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(out), &sinks); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if diff := cmp.Diff("TDSQLPOSTGRESQL", sinks[0].Type); diff != "" || len(sinks) != 1 {
		t.Fatalf("unexpected sinks %#v", sinks)
	}

	out, err = run(t, "", "schema")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	doc := testsupport.DecodeJSON(t, []byte(out))
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("unexpected document: %v", doc["openapi"])
	}

	out, err = run(t, "", "schema", "TDSQLPOSTGRESQL", "--format", "yaml")
	if err != nil {
		t.Fatalf("schema yaml: %v", err)
	}
	if !strings.Contains(out, "title: TDSQLPOSTGRESQL") {
		t.Fatalf("unexpected schema:\n%s", out)
	}
}

func TestCreateResourceCommand_DryRun(t *testing.T) {
	out, err := run(t, recordJSON(t), "create-resource", "TDSQLPOSTGRESQL", "--values", "-", "--dry-run")
	if err != nil {
		t.Fatalf("create-resource: %v", err)
	}
	for _, want := range []string{
		`CREATE SCHEMA IF NOT EXISTS "public";`,
		`CREATE TABLE IF NOT EXISTS "public"."order_events"`,
		`PRIMARY KEY ("id")`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	if _, err := run(t, "", "create-resource", "TDSQLPOSTGRESQL", "--dry-run"); err == nil {
		t.Fatalf("expected --values to be required")
	}
}

func TestCheckCommand_RejectsInvalidURL(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sink.yaml")
	record := "jdbcUrl: mysql://127.0.0.1:3306/orders\nusername: inlong\npassword: secret\n"
	if err := os.WriteFile(file, []byte(record), 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
	_, err := run(t, "", "check", "TDSQLPOSTGRESQL", "--values", file)
	if err == nil || !strings.Contains(err.Error(), "invalid jdbc url") {
		t.Fatalf("expected an invalid url error, got %v", err)
	}
}

func TestLintCommand(t *testing.T) {
	out, err := run(t, "", "lint")
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if strings.TrimSpace(out) != "1 sink types ok" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRootCommand_ConfigErrors(t *testing.T) {
	if _, err := run(t, "", "form", "KAFKA"); err == nil || !strings.Contains(err.Error(), "unknown sink type") {
		t.Fatalf("expected an unknown sink error, got %v", err)
	}
	if _, err := run(t, "", "--connect-timeout", "0s", "list"); !errors.Is(err, config.ErrInvalidTimeout) {
		t.Fatalf("expected ErrInvalidTimeout, got %v", err)
	}
}
