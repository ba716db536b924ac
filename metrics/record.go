package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag is an indexed key/value pair used for grouping by the downstream store.
type Tag struct {
	Key   string
	Value string
}

// Field holds a measured quantity. Allowed value types are int64, float64 and string.
type Field struct {
	Key   string
	Value interface{}
}

// Record is a single tagged measurement. Tags and fields keep their insertion
// order so serialization stays deterministic. A record is built once per event
// occurrence and not mutated afterwards.
type Record struct {
	Name   string
	tags   []Tag
	fields []Field
}

func NewRecord(name string) *Record {
	return &Record{Name: name}
}

func (r *Record) AddTag(key, value string) *Record {
	r.tags = append(r.tags, Tag{Key: key, Value: value})
	return r
}

func (r *Record) AddField(key string, value interface{}) *Record {
	r.fields = append(r.fields, Field{Key: key, Value: value})
	return r
}

func (r Record) Tags() []Tag {
	return r.tags
}

func (r Record) Fields() []Field {
	return r.fields
}

func (r Record) Tag(key string) (string, bool) {
	for _, t := range r.tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

func (r Record) Field(key string) (interface{}, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (r Record) HasField(key string) bool {
	_, found := r.Field(key)
	return found
}

// String renders the record in influx line protocol (without timestamp).
func (r Record) String() string {
	var builder strings.Builder
	builder.WriteString(r.Name)
	for _, t := range r.tags {
		builder.WriteString(",")
		builder.WriteString(t.Key)
		builder.WriteString("=")
		builder.WriteString(t.Value)
	}
	builder.WriteString(" ")
	first := true
	for _, f := range r.fields {
		if !first {
			builder.WriteString(",")
		} else {
			first = false
		}
		builder.WriteString(f.Key)
		builder.WriteString("=")
		builder.WriteString(formatValue(f.Value))
	}
	return builder.String()
}

func formatValue(val interface{}) string {
	switch typed := val.(type) {
	case int:
		return fmt.Sprintf("%di", typed)
	case int64:
		return fmt.Sprintf("%di", typed)
	case string:
		return fmt.Sprintf(`"%s"`, typed)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		if typed {
			return "T"
		}
		return "F"
	default:
		return fmt.Sprintf("%v", val)
	}
}
