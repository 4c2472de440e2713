package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StatusKey is the record key holding the lifecycle status of a sink.
const StatusKey = "status"

// FormContext is the context bag handed to a descriptor by the renderer.
// Every member is optional.
type FormContext struct {
	CurrentValues map[string]any
	IsEdit        bool
	InlongGroupID string
	DataType      string
	// Form is an opaque handle passed through to nested tables.
	Form any
}

// Status returns the lifecycle status from the current values.
func (c FormContext) Status() int {
	return StatusOf(c.CurrentValues)
}

// State converts the context into the row state used to resolve top level
// field props.
func (c FormContext) State() RowState {
	return RowState{
		Record: c.CurrentValues,
		IsEdit: c.IsEdit,
		Status: c.Status(),
	}
}

// RowState is the input of PropsFunc. For top level fields Record is the sink
// record; for table columns it is the row while Status still comes from the
// enclosing sink.
type RowState struct {
	Record map[string]any
	Index  int
	IsNew  bool
	IsEdit bool
	Status int
}

// Vars exposes the state flags to rule evaluation. The record itself is
// addressed through the row. prefix.
func (s RowState) Vars() map[string]any {
	return map[string]any{
		"status": s.Status,
		"isEdit": s.IsEdit,
		"isNew":  s.IsNew,
		"index":  s.Index,
	}
}

// StatusOf reads the status key from a record, returning 0 when it is absent
// or not a number. Numeric strings do not count as a status.
func StatusOf(values map[string]any) int {
	if values == nil {
		return 0
	}
	raw, ok := values[StatusKey]
	if !ok {
		return 0
	}
	if _, isString := raw.(string); isString {
		return 0
	}
	status, ok := IntValue(raw)
	if !ok {
		return 0
	}
	return status
}

// IntValue coerces the loosely typed numbers found in decoded records.
func IntValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		return int(v), float32(int(v)) == v
	case float64:
		return int(v), float64(int(v)) == v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// StringValue renders a record value as the string a text control shows.
func StringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		if n, ok := IntValue(v); ok {
			return strconv.Itoa(n)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// NewRowKey marks a table row added in the current edit session.
const NewRowKey = "_isNew"

// IsNewRow reports whether row was added in the current session: it carries
// the NewRowKey flag, or it has no persisted id.
func IsNewRow(row map[string]any) bool {
	if flag, ok := row[NewRowKey].(bool); ok {
		return flag
	}
	id, ok := row["id"]
	if !ok || id == nil {
		return true
	}
	if s, isString := id.(string); isString {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Rows returns the rows of an embedded table value. ok is false when value is
// not a list.
func Rows(value any) (rows []any, ok bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, row := range v {
			out[i] = row
		}
		return out, true
	default:
		return nil, false
	}
}
