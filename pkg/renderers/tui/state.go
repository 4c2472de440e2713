package tui

import "github.com/goliatone/go-sinkform/pkg/model"

// State tracks collected values and server-provided errors. Values are keyed
// by field name; embedded tables hold a list of row records.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	state := &State{
		values: make(map[string]any, len(prefill)),
		errors: make(map[string][]string, len(errs)),
	}
	for key, value := range prefill {
		state.values[key] = deepCopy(value)
	}
	for key, messages := range errs {
		state.errors[key] = append([]string(nil), messages...)
	}
	return state
}

// Values returns the current value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a field name or cell path.
func (s *State) ErrorsFor(path string) []string {
	if s == nil {
		return nil
	}
	return s.errors[path]
}

// Get returns the value of a top level field.
func (s *State) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[name]
	return value, ok
}

// Set stores the value of a top level field.
func (s *State) Set(name string, value any) {
	s.values[name] = value
}

// Rows returns the records of an embedded table. Entries that are not
// objects are dropped.
func (s *State) Rows(name string) []map[string]any {
	raw, _ := s.Get(name)
	rows, _ := model.Rows(raw)
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if record, ok := row.(map[string]any); ok {
			out = append(out, record)
		}
	}
	return out
}

// SetRows stores the records of an embedded table.
func (s *State) SetRows(name string, rows []map[string]any) {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	s.values[name] = out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []map[string]any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
