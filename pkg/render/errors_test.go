package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

func testForm() sink.FormView {
	return sink.FormView{
		Mode: sink.ModeForm,
		Fields: []model.FieldSpec{
			{Kind: model.KindInput, Name: "jdbcUrl"},
			{Kind: model.KindInput, Name: "tableName"},
			{
				Kind: model.KindTable,
				Name: "sinkFieldList",
				Table: &model.TableSpec{Columns: []model.ColumnSpec{
					{DataIndex: "fieldName"},
					{DataIndex: "fieldType"},
				}},
			},
		},
	}
}

func TestMapErrorPayload_PathStyles(t *testing.T) {
	payload := map[string][]string{
		"/body/jdbcUrl":                     {"JDBC URL is required"},
		"request.payload.tableName":         {"Table name is required"},
		"$.body.sinkFieldList[0].fieldName": {"Invalid name"},
		"sinkFieldList/1/fieldType":         {"Unknown type"},
		"sinkFieldList.2.unknownColumn":     {"Row error"},
		"sinkFieldList":                     {"At least one field"},
		"non_field_errors":                  {"Form level error"},
		"request/body/unknown-field":        {"Should fall back to form errors"},
		"":                                  {"Unscoped form error"},
	}

	mapped := render.MapErrorPayload(testForm(), payload)

	wantFields := map[string][]string{
		"jdbcUrl":                   {"JDBC URL is required"},
		"tableName":                 {"Table name is required"},
		"sinkFieldList.0.fieldName": {"Invalid name"},
		"sinkFieldList.1.fieldType": {"Unknown type"},
		"sinkFieldList.2":           {"Row error"},
		"sinkFieldList":             {"At least one field"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload_Empty(t *testing.T) {
	mapped := render.MapErrorPayload(testForm(), map[string][]string{"jdbcUrl": {"  "}})
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected blank messages to be dropped, got %+v", mapped)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenFields(t *testing.T) {
	opts := render.RenderOptions{Context: model.FormContext{
		CurrentValues: map[string]any{"status": 130},
		InlongGroupID: "group-1",
	}}
	hidden := render.MergeHiddenFields(map[string]string{"csrf": "x", " ": "dropped"}, render.ContextHidden(opts)...)

	want := []render.HiddenField{
		{Name: "csrf", Value: "x"},
		{Name: "inlongGroupId", Value: "group-1"},
		{Name: "status", Value: "130"},
	}
	if diff := cmp.Diff(want, render.SortedHiddenFields(hidden)); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if got := render.MergeHiddenFields(nil); got != nil {
		t.Fatalf("expected nil for no hidden fields, got %v", got)
	}
}

func TestRenderOptionsMergedValues(t *testing.T) {
	opts := render.RenderOptions{
		Context: model.FormContext{CurrentValues: map[string]any{"tableName": "a", "schemaName": "public"}},
		Values:  map[string]any{"tableName": "b"},
	}
	want := map[string]any{"tableName": "b", "schemaName": "public"}
	if diff := cmp.Diff(want, opts.MergedValues()); diff != "" {
		t.Fatalf("merged values mismatch (-want +got):\n%s", diff)
	}
}
