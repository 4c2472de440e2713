package expr

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-sinkform/pkg/visibility"
)

func TestEvaluatorMembership(t *testing.T) {
	t.Parallel()

	eval := New()
	cases := []struct {
		name   string
		rule   string
		values map[string]any
		row    map[string]any
		want   bool
	}{
		{name: "int status in set", rule: "status in [110, 130]", values: map[string]any{"status": 130}, want: true},
		{name: "float status in set", rule: "status in [110, 130]", values: map[string]any{"status": float64(110)}, want: true},
		{name: "json number in set", rule: "status in [110, 130]", values: map[string]any{"status": json.Number("110")}, want: true},
		{name: "status outside set", rule: "status in [110, 130]", values: map[string]any{"status": 120}, want: false},
		{name: "missing status", rule: "status in [110, 130]", values: map[string]any{}, want: false},
		{name: "row string in set", rule: "row.fieldType in ['BIGINT', 'DATE', 'TIMESTAMP']", row: map[string]any{"fieldType": "TIMESTAMP"}, want: true},
		{name: "row string outside set", rule: "row.fieldType in ['BIGINT', 'DATE', 'TIMESTAMP']", row: map[string]any{"fieldType": "VARCHAR"}, want: false},
		{name: "empty set", rule: "status in []", values: map[string]any{"status": 1}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Eval(tc.rule, visibility.Context{Values: tc.values, Row: tc.row})
			if err != nil {
				t.Fatalf("Eval returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestEvaluatorComposition(t *testing.T) {
	t.Parallel()

	eval := New()

	ok, err := eval.Eval("isEdit && status in [110, 130]", visibility.Context{
		Values: map[string]any{"isEdit": true, "status": 110},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected frozen edit to evaluate true")
	}

	ok, err = eval.Eval("isEdit && status in [110, 130]", visibility.Context{
		Values: map[string]any{"isEdit": false, "status": 110},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected create mode to evaluate false")
	}

	ok, err = eval.Eval("!isEdit || isNew", visibility.Context{
		Values: map[string]any{"isEdit": true, "isNew": true},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected new rows to be deletable")
	}
}

func TestEvaluatorComparisons(t *testing.T) {
	t.Parallel()

	eval := New()
	ctx := visibility.Context{
		Values: map[string]any{"enabled": "true", "count": 3},
		Row:    map[string]any{"kind": "DATE", "nested": map[string]any{"flag": true}},
	}

	for rule, want := range map[string]bool{
		`enabled == true`:         true,
		`count == 3`:              true,
		`count != 3`:              false,
		`row.kind == "DATE"`:      true,
		`row.kind != 'DATE'`:      false,
		`row.nested.flag`:         true,
		`row.missing == null`:     true,
		`(count == 2) || enabled`: true,
		`!(count == 3)`:           false,
	} {
		got, err := eval.Eval(rule, ctx)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", rule, err)
		}
		if got != want {
			t.Fatalf("Eval(%q): expected %v, got %v", rule, want, got)
		}
	}
}

func TestEvaluatorEmptyRuleIsTrue(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("   ", visibility.Context{})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected empty rule to evaluate true")
	}
}

func TestEvaluatorRejectsMalformedRules(t *testing.T) {
	t.Parallel()

	eval := New()
	for _, rule := range []string{
		"status = 1",
		"a & b",
		"status in 110",
		"status in [110 130]",
		"(isEdit",
		`row.kind == "open`,
		"== 1",
	} {
		if err := eval.Check(rule); err == nil {
			t.Fatalf("expected %q to be rejected", rule)
		}
	}
}
