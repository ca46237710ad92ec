// Firestore REST value codec.
package firestore

import (
	"strconv"
	"strings"
)

// Value is one typed Firestore field value. Exactly one member is set.
type Value struct {
	StringValue    *string     `json:"stringValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"` // the wire carries int64 as a string
	DoubleValue    *float64    `json:"doubleValue,omitempty"`
	BooleanValue   *bool       `json:"booleanValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	ReferenceValue *string     `json:"referenceValue,omitempty"`
	ArrayValue     *ArrayValue `json:"arrayValue,omitempty"`
	MapValue       *MapValue   `json:"mapValue,omitempty"`
}

// ArrayValue is a list field.
type ArrayValue struct {
	Values []Value `json:"values,omitempty"`
}

// MapValue is a nested object field.
type MapValue struct {
	Fields map[string]Value `json:"fields,omitempty"`
}

// Document is one stored document. Name is the full resource path; the
// final path segment is the document id.
type Document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]Value `json:"fields,omitempty"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// ID returns the document id, the last segment of the resource path.
func (d Document) ID() string {
	if d.Name == "" {
		return ""
	}
	return d.Name[strings.LastIndex(d.Name, "/")+1:]
}

// FieldPaths returns the document's field names, the update mask for a
// merge write built from this document.
func (d Document) FieldPaths() []string {
	paths := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		paths = append(paths, name)
	}
	return paths
}

// String wraps a string value.
func String(s string) Value { return Value{StringValue: &s} }

// Integer wraps an integer value.
func Integer(n int64) Value {
	s := strconv.FormatInt(n, 10)
	return Value{IntegerValue: &s}
}

// Boolean wraps a boolean value.
func Boolean(b bool) Value { return Value{BooleanValue: &b} }

// Reference wraps a document reference path.
func Reference(path string) Value { return Value{ReferenceValue: &path} }

// StringArray wraps a list of strings.
func StringArray(items []string) Value {
	values := make([]Value, 0, len(items))
	for _, item := range items {
		values = append(values, String(item))
	}
	return Value{ArrayValue: &ArrayValue{Values: values}}
}

// ReferenceArray wraps ids as references under parent/collection.
func ReferenceArray(parent, collection string, ids []string) Value {
	values := make([]Value, 0, len(ids))
	for _, id := range ids {
		values = append(values, Reference(parent+"/"+collection+"/"+id))
	}
	return Value{ArrayValue: &ArrayValue{Values: values}}
}

// AsString unwraps a string value; integers unwrap to their decimal form so
// numeric wire durations normalize like any other.
func (v Value) AsString() string {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		return *v.IntegerValue
	case v.ReferenceValue != nil:
		return *v.ReferenceValue
	}
	return ""
}

// AsStrings unwraps an array of strings. Reference entries unwrap to their
// document ids, which is how array-valued relations become id lists.
func (v Value) AsStrings() []string {
	if v.ArrayValue == nil {
		return nil
	}
	out := make([]string, 0, len(v.ArrayValue.Values))
	for _, item := range v.ArrayValue.Values {
		if item.ReferenceValue != nil {
			out = append(out, refID(*item.ReferenceValue))
			continue
		}
		out = append(out, item.AsString())
	}
	return out
}

// refID extracts the document id from a reference path.
func refID(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
