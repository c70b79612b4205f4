package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/todoreview/internal/model"
)

type Field struct {
	Key    string
	Header string
}

type FieldSelection struct {
	Fields []Field
}

var fieldRegistry = map[string]string{
	"id":       "ID",
	"tag":      "TAG",
	"priority": "PRIORITY",
	"location": "LOCATION",
	"file":     "FILE",
	"line":     "LINE",
	"text":     "TEXT",
}

// DefaultFields is used by the column formats when --fields is empty.
var DefaultFields = []string{"id", "tag", "priority", "location", "text"}

// FieldNames lists the accepted --fields keys in display order.
func FieldNames() []string {
	return []string{"id", "tag", "priority", "location", "file", "line", "text"}
}

// ResolveFields parses a comma separated field list. Keys are case-insensitive.
func ResolveFields(raw string) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	keys := DefaultFields
	if raw != "" {
		keys = strings.Split(raw, ",")
	}
	sel := FieldSelection{Fields: make([]Field, 0, len(keys))}
	for _, part := range keys {
		name := strings.TrimSpace(part)
		if name == "" {
			return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
		}
		key := strings.ToLower(name)
		header, ok := fieldRegistry[key]
		if !ok {
			return FieldSelection{}, fmt.Errorf("unknown field: %s (want one of %s)", name, strings.Join(FieldNames(), ", "))
		}
		sel.Fields = append(sel.Fields, Field{Key: key, Header: header})
	}
	return sel, nil
}

func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

func RowValues(r model.Record, fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = formatFieldValue(r, f.Key)
	}
	return out
}

func formatFieldValue(r model.Record, key string) string {
	switch key {
	case "id":
		return strconv.Itoa(r.ID)
	case "tag":
		return r.Tag
	case "priority":
		if !r.HasPriority() {
			return ""
		}
		return strconv.Itoa(r.Priority)
	case "location":
		return fmt.Sprintf("%s:%d", r.File, r.Line)
	case "file":
		return r.File
	case "line":
		return strconv.Itoa(r.Line)
	case "text":
		return r.Text
	default:
		return ""
	}
}
