package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden form input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// ContextHidden carries the parts of the form context a submission must echo
// back: the lifecycle status and the owning group.
func ContextHidden(opts RenderOptions) []HiddenField {
	var out []HiddenField
	if status := opts.Context.Status(); status != 0 {
		out = append(out, Hidden("status", status))
	}
	if group := strings.TrimSpace(opts.Context.InlongGroupID); group != "" {
		out = append(out, Hidden("inlongGroupId", group))
	}
	return out
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names are
// ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: fields[name]})
	}
	return out
}
