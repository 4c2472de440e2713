package jsonview_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/renderers/jsonview"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/sink/tdsqlpostgresql"
	"github.com/goliatone/go-sinkform/pkg/testsupport"
)

func TestJSON_RenderColumnsGolden(t *testing.T) {
	renderer := jsonview.New()
	if got := renderer.Name(); got != "json" {
		t.Fatalf("unexpected renderer name: %s", got)
	}
	if got := renderer.ContentType(); got != "application/json" {
		t.Fatalf("unexpected content type: %s", got)
	}

	desc := testsupport.Descriptor(t, tdsqlpostgresql.Type, "en")
	form := desc.GetForm(sink.ModeCol, model.FormContext{})
	output, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{
		Title:  desc.Type(),
		Locale: "en",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	goldenPath := filepath.Join("testdata", "columns_en.golden.json")
	if testsupport.WriteMaybeGolden(t, goldenPath, output) {
		return
	}
	want := testsupport.MustReadGolden(t, goldenPath)
	if diff := testsupport.CompareGolden(string(want), string(output)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_RenderFormResolvesContext(t *testing.T) {
	desc := testsupport.Descriptor(t, tdsqlpostgresql.Type, "en")
	ctx := model.FormContext{IsEdit: true, CurrentValues: map[string]any{"status": 130}}
	form := desc.GetForm(sink.ModeForm, ctx)

	output, err := jsonview.New(jsonview.WithIndent("")).Render(testsupport.Context(), form, render.RenderOptions{
		Context: ctx,
		Errors:  map[string][]string{"jdbcUrl": {"JDBC URL is required"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(output), "\n  ") {
		t.Fatalf("expected compact output, got %s", output)
	}

	doc := testsupport.DecodeJSON(t, output)
	if doc["mode"] != "form" {
		t.Fatalf("expected form mode, got %v", doc["mode"])
	}
	if _, ok := doc["columns"]; ok {
		t.Fatalf("form mode must not carry columns")
	}

	fields, _ := doc["fields"].([]any)
	var names []string
	for _, raw := range fields {
		field := raw.(map[string]any)
		names = append(names, field["name"].(string))
		if _, leaked := field["_inTable"]; leaked {
			t.Fatalf("field %v leaked the summary marker", field["name"])
		}
	}
	wantNames := []string{"jdbcUrl", "schemaName", "tableName", "primaryKey", "enableCreateResource", "username", "password", "sinkFieldList"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	jdbc := fields[0].(map[string]any)
	props := jdbc["props"].(map[string]any)
	if props["disabled"] != true {
		t.Fatalf("expected frozen jdbcUrl, got props %v", props)
	}
	if props["placeholder"] != tdsqlpostgresql.JDBCPlaceholder {
		t.Fatalf("unexpected placeholder %v", props["placeholder"])
	}

	wantErrors := map[string]any{"jdbcUrl": []any{"JDBC URL is required"}}
	if diff := cmp.Diff(wantErrors, doc["errors"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestYAML_MatchesJSON(t *testing.T) {
	desc := testsupport.Descriptor(t, tdsqlpostgresql.Type, "cn")
	form := desc.GetForm(sink.ModeForm, model.FormContext{})
	opts := render.RenderOptions{Title: desc.Type(), Locale: "cn"}

	jsonOut, err := jsonview.New().Render(testsupport.Context(), form, opts)
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	yamlRenderer := jsonview.NewYAML()
	if yamlRenderer.Name() != "yaml" || yamlRenderer.ContentType() != "application/yaml" {
		t.Fatalf("unexpected yaml renderer metadata")
	}
	yamlOut, err := yamlRenderer.Render(testsupport.Context(), form, opts)
	if err != nil {
		t.Fatalf("render yaml: %v", err)
	}

	if !strings.HasPrefix(string(yamlOut), "type: TDSQLPOSTGRESQL\nmode: form\nlocale: cn\n") {
		t.Fatalf("expected key order to follow json output, got:\n%s", yamlOut)
	}
	if strings.Contains(string(yamlOut), `"name":`) {
		t.Fatalf("expected block style yaml, got:\n%s", yamlOut)
	}

	var fromJSON, fromYAML any
	if err := yaml.Unmarshal(jsonOut, &fromJSON); err != nil {
		t.Fatalf("decode json as yaml: %v", err)
	}
	if err := yaml.Unmarshal(yamlOut, &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("yaml diverges from json (-json +yaml):\n%s", diff)
	}
}

func TestBuild_DefaultsToFormMode(t *testing.T) {
	doc := jsonview.Build(sink.FormView{Fields: []model.FieldSpec{{Kind: model.KindInput, Name: "a"}}}, render.RenderOptions{})
	if doc.Mode != sink.ModeForm || len(doc.Fields) != 1 || doc.Columns != nil {
		t.Fatalf("unexpected document %+v", doc)
	}
}
