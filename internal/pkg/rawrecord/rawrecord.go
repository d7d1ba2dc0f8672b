// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rawrecord provides the semi-structured record tree returned by the
// account-data provider.
//
// The provider wraps every field in a list: a field maps to an ordered sequence
// of values, each of which is either a text leaf or a nested record. Scalar
// fields are single-element lists and are read at index 0.
package rawrecord

import (
	"slices"
	"strings"
)

// Record is a mapping from field name to an ordered sequence of values.
type Record map[string][]Value

// Value is a single value within a Record field.
//
// A Value is either a text leaf or a nested Record.
type Value struct {
	text   string
	record Record
}

// Text returns a new text leaf Value.
func Text(text string) Value {
	return Value{text: text}
}

// Nested returns a new nested Record Value.
//
// A nil record is stored as an empty record so that IsNested is stable.
func Nested(record Record) Value {
	if record == nil {
		record = Record{}
	}
	return Value{record: record}
}

// IsNested returns true if the Value is a nested Record.
func (v Value) IsNested() bool {
	return v.record != nil
}

// Text returns the text of a leaf Value, or "" for a nested Record.
func (v Value) Text() string {
	return v.text
}

// Record returns the nested Record, or nil for a text leaf.
func (v Value) Record() Record {
	return v.record
}

// String returns the text of a leaf Value, or a compact rendering of a nested Record.
func (v Value) String() string {
	if !v.IsNested() {
		return v.text
	}
	return v.record.String()
}

// FromTexts returns a new Record with one text leaf per field.
func FromTexts(fieldToText map[string]string) Record {
	record := make(Record, len(fieldToText))
	for field, text := range fieldToText {
		record[field] = []Value{Text(text)}
	}
	return record
}

// Text returns the text at index 0 of the field.
//
// Missing fields, empty sequences, and nested values all read as "".
func (r Record) Text(field string) string {
	values := r[field]
	if len(values) == 0 {
		return ""
	}
	return values[0].Text()
}

// Records returns the nested Records of the field, skipping text leaves.
func (r Record) Records(field string) []Record {
	var records []Record
	for _, value := range r[field] {
		if value.IsNested() {
			records = append(records, value.record)
		}
	}
	return records
}

// Add appends values to the field.
func (r Record) Add(field string, values ...Value) {
	r[field] = append(r[field], values...)
}

// SortedFields returns the field names of the Record in sorted order.
func (r Record) SortedFields() []string {
	fields := make([]string, 0, len(r))
	for field := range r {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}

// String returns a compact, deterministic rendering of the Record for diagnostics.
func (r Record) String() string {
	var builder strings.Builder
	r.writeTo(&builder)
	return builder.String()
}

// Search returns all values stored under key anywhere in the tree rooted at root.
//
// The tree is walked depth-first in sorted field order. Values of a matching
// field are returned as-is and are not searched further. The result is nil if
// the key does not appear.
func Search(root Record, key string) []Value {
	var values []Value
	search(root, key, &values)
	return values
}

// SearchRecords returns the nested Records among the values of Search.
func SearchRecords(root Record, key string) []Record {
	var records []Record
	for _, value := range Search(root, key) {
		if value.IsNested() {
			records = append(records, value.record)
		}
	}
	return records
}

// SearchText returns the text of the first value of Search, or "" if there is none.
func SearchText(root Record, key string) string {
	values := Search(root, key)
	if len(values) == 0 {
		return ""
	}
	return values[0].Text()
}

// *** PRIVATE ***

func search(record Record, key string, values *[]Value) {
	for _, field := range record.SortedFields() {
		if field == key {
			*values = append(*values, record[field]...)
			continue
		}
		for _, value := range record[field] {
			if value.IsNested() {
				search(value.record, key, values)
			}
		}
	}
}

func (r Record) writeTo(builder *strings.Builder) {
	builder.WriteByte('{')
	for i, field := range r.SortedFields() {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(field)
		builder.WriteString(":[")
		for j, value := range r[field] {
			if j > 0 {
				builder.WriteByte(',')
			}
			if value.IsNested() {
				value.record.writeTo(builder)
			} else {
				builder.WriteString(value.text)
			}
		}
		builder.WriteByte(']')
	}
	builder.WriteByte('}')
}
