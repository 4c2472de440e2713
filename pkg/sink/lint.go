package sink

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/visibility"
)

// LintStatuses are the lifecycle states Lint renders a descriptor in.
var LintStatuses = []int{0, 100, StatusConfiguring, 120, StatusConfigured}

// Violation is a rule string that disagrees with the predicate it mirrors,
// or that does not evaluate at all.
type Violation struct {
	Sink     string
	Location string
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s -> %s", v.Sink, v.Location, v.Message)
}

// Lint renders desc for every combination of edit flag and LintStatuses and
// checks that each disabledWhen, visibleWhen and canDeleteWhen string
// evaluates to the same answer as the props, visibility and delete functions
// renderers call. Violations are sorted by location.
func Lint(desc Descriptor, eval visibility.Evaluator) []Violation {
	l := linter{sink: desc.Type(), eval: eval, seen: map[string]struct{}{}}
	for _, isEdit := range []bool{false, true} {
		for _, status := range LintStatuses {
			ctx := model.FormContext{
				CurrentValues: map[string]any{model.StatusKey: status},
				IsEdit:        isEdit,
			}
			l.fields(desc.GetForm(ModeForm, ctx).Fields, ctx.State())
		}
	}
	sort.Slice(l.out, func(i, j int) bool {
		if l.out[i].Location == l.out[j].Location {
			return l.out[i].Message < l.out[j].Message
		}
		return l.out[i].Location < l.out[j].Location
	})
	return l.out
}

type linter struct {
	sink string
	eval visibility.Evaluator
	out  []Violation
	seen map[string]struct{}
}

func (l *linter) fields(fields []model.FieldSpec, state model.RowState) {
	for _, field := range fields {
		if field.Table != nil {
			l.table(field.Name, *field.Table, state)
			continue
		}
		if field.DisabledWhen == "" {
			continue
		}
		l.compare(field.Name+".disabledWhen", field.DisabledWhen,
			visibility.Context{Values: state.Vars(), Row: state.Record},
			field.Resolve(state).Disabled, state)
	}
}

func (l *linter) table(name string, table model.TableSpec, base model.RowState) {
	rows := sampleRows(table.Columns)
	for _, isNew := range []bool{false, true} {
		state := base
		state.IsNew = isNew

		if table.CanDeleteWhen != "" && table.CanDelete != nil {
			l.compare(name+".canDeleteWhen", table.CanDeleteWhen,
				visibility.Context{Values: state.Vars()},
				table.CanDelete(state), state)
		}

		for _, column := range table.Columns {
			location := name + "." + column.DataIndex
			if column.DisabledWhen != "" {
				l.compare(location+".disabledWhen", column.DisabledWhen,
					visibility.Context{Values: state.Vars()},
					column.Resolve(state).Disabled, state)
			}
			if column.VisibleWhen == "" {
				continue
			}
			for _, row := range rows {
				rowState := state
				rowState.Record = row
				l.compare(location+".visibleWhen", column.VisibleWhen,
					visibility.Context{Values: rowState.Vars(), Row: row},
					column.IsVisible(row), rowState)
			}
		}
	}
}

func (l *linter) compare(location, rule string, ctx visibility.Context, want bool, state model.RowState) {
	got, err := l.eval.Eval(rule, ctx)
	var message string
	switch {
	case err != nil:
		message = err.Error()
	case got != want:
		message = fmt.Sprintf("rule %q is %v but the predicate is %v (isEdit=%v isNew=%v status=%d row=%v)",
			rule, got, want, state.IsEdit, state.IsNew, state.Status, state.Record)
	default:
		return
	}
	// One report per location and message; the same bad rule repeats across states.
	key := location + "\x00" + message
	if _, ok := l.seen[key]; ok {
		return
	}
	l.seen[key] = struct{}{}
	l.out = append(l.out, Violation{Sink: l.sink, Location: location, Message: message})
}

// sampleRows builds one row per option of every choice column, plus an empty
// row, so visibility rules keyed on a choice see each of its values.
func sampleRows(columns []model.ColumnSpec) []map[string]any {
	rows := []map[string]any{{}}
	for _, column := range columns {
		for _, option := range column.Resolve(model.RowState{IsNew: true}).Options {
			rows = append(rows, map[string]any{column.DataIndex: option.Value})
		}
	}
	return rows
}
