package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		values map[string]any
		want   int
	}{
		{name: "nil record", values: nil, want: 0},
		{name: "missing key", values: map[string]any{}, want: 0},
		{name: "int", values: map[string]any{"status": 130}, want: 130},
		{name: "float from json", values: map[string]any{"status": float64(110)}, want: 110},
		{name: "json number", values: map[string]any{"status": json.Number("130")}, want: 130},
		{name: "int64", values: map[string]any{"status": int64(120)}, want: 120},
		{name: "numeric string ignored", values: map[string]any{"status": "130"}, want: 0},
		{name: "fractional float ignored", values: map[string]any{"status": float64(110.5)}, want: 0},
		{name: "fractional float32 ignored", values: map[string]any{"status": float32(130.25)}, want: 0},
		{name: "bool ignored", values: map[string]any{"status": true}, want: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := StatusOf(tc.values); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestIntValueAcceptsNumericStrings(t *testing.T) {
	t.Parallel()

	if n, ok := IntValue(" 7 "); !ok || n != 7 {
		t.Fatalf("expected 7, got %d (%v)", n, ok)
	}
	if _, ok := IntValue("seven"); ok {
		t.Fatalf("expected non numeric string to fail")
	}
}

func TestStringValue(t *testing.T) {
	t.Parallel()

	for input, want := range map[any]string{
		nil:                 "",
		"abc":               "abc",
		float64(1.5):        "1.5",
		float64(2):          "2",
		true:                "true",
		3:                   "3",
		json.Number("4.25"): "4.25",
	} {
		if got := StringValue(input); got != want {
			t.Fatalf("StringValue(%#v): expected %q, got %q", input, want, got)
		}
	}
}

func TestPatternRule(t *testing.T) {
	t.Parallel()

	rule := Pattern(`^[a-z]+$`, "lower only")
	if rule.Kind != RulePattern || rule.Message != "lower only" {
		t.Fatalf("unexpected rule: %#v", rule)
	}
	ok, err := rule.Match("abc")
	if err != nil || !ok {
		t.Fatalf("expected abc to match: %v %v", ok, err)
	}
	ok, err = rule.Match("Abc")
	if err != nil || ok {
		t.Fatalf("expected Abc to fail: %v %v", ok, err)
	}

	ok, err = Required().Match("")
	if err != nil || !ok {
		t.Fatalf("expected required rule to ignore pattern matching")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected invalid pattern to panic")
		}
	}()
	Pattern("(", "broken")
}

func TestRequired(t *testing.T) {
	t.Parallel()

	if !(FieldSpec{Rules: []ValidationRule{Required()}}).Required() {
		t.Fatalf("expected field to be required")
	}
	if (ColumnSpec{Rules: []ValidationRule{Pattern(`^a$`, "")}}).Required() {
		t.Fatalf("expected pattern-only column to be optional")
	}
}

func TestColumnVisibility(t *testing.T) {
	t.Parallel()

	if !(ColumnSpec{DataIndex: "x"}).IsVisible(nil) {
		t.Fatalf("expected columns without predicate to be visible")
	}

	var seen any
	column := ColumnSpec{
		DataIndex: "x",
		Visible: func(value any, row map[string]any) bool {
			seen = value
			return row["kind"] == "on"
		},
	}
	if !column.IsVisible(map[string]any{"x": 5, "kind": "on"}) {
		t.Fatalf("expected visible row")
	}
	if seen != 5 {
		t.Fatalf("expected cell value to be passed, got %#v", seen)
	}
	if column.IsVisible(map[string]any{"kind": "off"}) {
		t.Fatalf("expected hidden row")
	}
}

func TestColumnViewSplitsExistingAndNewRows(t *testing.T) {
	t.Parallel()

	column := ColumnSpec{
		Title:     "Name",
		DataIndex: "name",
		Kind:      KindInput,
		Props: func(state RowState) RenderOptions {
			return RenderOptions{Disabled: !state.IsNew && state.Status == 130}
		},
	}
	view := column.View(RowState{Status: 130, IsNew: true})
	want := ColumnView{
		Title:       "Name",
		DataIndex:   "name",
		Kind:        KindInput,
		Props:       RenderOptions{Disabled: true},
		NewRowProps: RenderOptions{},
	}
	if diff := cmp.Diff(want, view); diff != "" {
		t.Fatalf("column view mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldViewJSON(t *testing.T) {
	t.Parallel()

	field := FieldSpec{
		Kind:  KindTable,
		Name:  "list",
		Rules: []ValidationRule{Required()},
		Table: &TableSpec{
			Size: "small",
			Columns: []ColumnSpec{
				{Title: "A", DataIndex: "a"},
			},
			CanDelete: func(state RowState) bool { return state.IsNew },
		},
	}

	raw, err := json.Marshal(field.View(RowState{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"type":  "table",
		"name":  "list",
		"rules": []any{map[string]any{"kind": "required"}},
		"props": map[string]any{},
		"table": map[string]any{
			"size":         "small",
			"canDelete":    false,
			"canDeleteNew": true,
			"columns": []any{
				map[string]any{
					"title":       "A",
					"dataIndex":   "a",
					"props":       map[string]any{},
					"newRowProps": map[string]any{},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("field json mismatch (-want +got):\n%s", diff)
	}
}

func TestFormContextState(t *testing.T) {
	t.Parallel()

	ctx := FormContext{IsEdit: true, CurrentValues: map[string]any{"status": 110}}
	state := ctx.State()
	if !state.IsEdit || state.Status != 110 || state.IsNew {
		t.Fatalf("unexpected state: %#v", state)
	}
	vars := state.Vars()
	if vars["status"] != 110 || vars["isEdit"] != true || vars["isNew"] != false {
		t.Fatalf("unexpected vars: %#v", vars)
	}
}

func TestFieldKindValid(t *testing.T) {
	t.Parallel()

	for _, kind := range []FieldKind{KindInput, KindPassword, KindRadio, KindSelect, KindAutocomplete, KindTable} {
		if !kind.Valid() {
			t.Fatalf("expected %q to be valid", kind)
		}
	}
	if FieldKind("checkbox").Valid() {
		t.Fatalf("expected unknown kind to be invalid")
	}
}

func TestIsNewRow(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		row  map[string]any
		want bool
	}{
		"persisted id":     {row: map[string]any{"id": float64(3)}, want: false},
		"missing id":       {row: map[string]any{"fieldName": "a"}, want: true},
		"blank id":         {row: map[string]any{"id": " "}, want: true},
		"nil id":           {row: map[string]any{"id": nil}, want: true},
		"flag overrides":   {row: map[string]any{"id": 3, "_isNew": true}, want: true},
		"flag marks saved": {row: map[string]any{"_isNew": false}, want: false},
	}
	for name, tc := range cases {
		if got := IsNewRow(tc.row); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}

func TestRows(t *testing.T) {
	t.Parallel()

	rows, ok := Rows([]map[string]any{{"a": 1}})
	if !ok || len(rows) != 1 {
		t.Fatalf("expected typed rows to convert, got %v %v", rows, ok)
	}
	if _, ok := Rows("nope"); ok {
		t.Fatalf("expected non-list value to be rejected")
	}
	if _, ok := Rows(nil); ok {
		t.Fatalf("expected nil to be rejected")
	}
}
