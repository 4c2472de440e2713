package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/sink"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages. Field keys are field names or table cell paths
// (list.<row>.<dataIndex>).
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads (dotted, slash or JSON
// pointer paths, optionally wrapped in body/request/payload) onto the paths of
// form. Unknown paths become form-level errors so messages are not lost.
func MapErrorPayload(form sink.FormView, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	index := indexFields(form.Fields)
	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		path := mapErrorPath(rawPath, index)
		if path == "" {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

type fieldIndex map[string]map[string]struct{}

func indexFields(fields []model.FieldSpec) fieldIndex {
	out := make(fieldIndex, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		var columns map[string]struct{}
		if field.Table != nil {
			columns = make(map[string]struct{}, len(field.Table.Columns))
			for _, column := range field.Table.Columns {
				columns[column.DataIndex] = struct{}{}
			}
		}
		out[name] = columns
	}
	return out
}

func mapErrorPath(raw string, index fieldIndex) string {
	if isFormLevelKey(raw) {
		return ""
	}
	segments := dropWrapperSegments(parsePathSegments(raw))
	if len(segments) == 0 {
		return ""
	}
	columns, ok := index[segments[0]]
	if !ok {
		return ""
	}
	if columns == nil || len(segments) < 2 {
		return segments[0]
	}
	if _, err := strconv.Atoi(segments[1]); err != nil {
		return segments[0]
	}
	if len(segments) >= 3 {
		if _, known := columns[segments[2]]; known {
			return strings.Join(segments[:3], ".")
		}
	}
	return strings.Join(segments[:2], ".")
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = clean[1:]
	}
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":    {},
	"request": {},
	"payload": {},
	"data":    {},
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors":
		return true
	default:
		return false
	}
}
