// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package recordio provides functions for reading and writing raw records as JSON files.
//
// Records are converted to google.protobuf.Struct values and serialized with
// protojson, one record per line. Every field is stored as a list whose
// elements are either strings (text leaves) or structs (nested records).
package recordio

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/bufdev/acctportal/internal/standard/xos"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// WriteRecordJSON writes a single record as JSON to a file.
func WriteRecordJSON(filePath string, record rawrecord.Record) error {
	return WriteRecordsJSON(filePath, []rawrecord.Record{record})
}

// ReadRecordJSON reads a single record from a JSON file.
//
// Returns an error if the file does not contain exactly one record.
func ReadRecordJSON(filePath string) (rawrecord.Record, error) {
	records, err := ReadRecordsJSON(filePath)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("expected 1 record in %s, got %d", filePath, len(records))
	}
	return records[0], nil
}

// WriteRecordsJSON writes multiple records as newline-separated JSON to a file.
//
// The file is replaced atomically.
func WriteRecordsJSON(filePath string, records []rawrecord.Record) error {
	var buf bytes.Buffer
	for _, record := range records {
		data, err := MarshalRecord(record)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return xos.WriteFileAtomic(filePath, buf.Bytes(), 0o644)
}

// ReadRecordsJSON reads newline-separated JSON records from a file.
func ReadRecordsJSON(filePath string) ([]rawrecord.Record, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var records []rawrecord.Record
	for line := range bytes.SplitSeq(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		record, err := UnmarshalRecord(line)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// MarshalRecord marshals a record to single-line JSON.
func MarshalRecord(record rawrecord.Record) ([]byte, error) {
	message, err := recordToStruct(record)
	if err != nil {
		return nil, err
	}
	return (protojson.MarshalOptions{UseProtoNames: true}).Marshal(message)
}

// UnmarshalRecord unmarshals JSON data into a record.
func UnmarshalRecord(data []byte) (rawrecord.Record, error) {
	message := &structpb.Struct{}
	if err := (protojson.UnmarshalOptions{}).Unmarshal(data, message); err != nil {
		return nil, err
	}
	return structToRecord(message)
}

// *** PRIVATE ***

// recordToStruct converts a record into a Struct of lists.
func recordToStruct(record rawrecord.Record) (*structpb.Struct, error) {
	fields := make(map[string]*structpb.Value, len(record))
	for field, values := range record {
		list := make([]*structpb.Value, 0, len(values))
		for _, value := range values {
			if !value.IsNested() {
				list = append(list, structpb.NewStringValue(value.Text()))
				continue
			}
			nested, err := recordToStruct(value.Record())
			if err != nil {
				return nil, err
			}
			list = append(list, structpb.NewStructValue(nested))
		}
		fields[field] = structpb.NewListValue(&structpb.ListValue{Values: list})
	}
	return &structpb.Struct{Fields: fields}, nil
}

// structToRecord converts a Struct of lists back into a record.
func structToRecord(message *structpb.Struct) (rawrecord.Record, error) {
	record := make(rawrecord.Record, len(message.GetFields()))
	for field, value := range message.GetFields() {
		list, ok := value.GetKind().(*structpb.Value_ListValue)
		if !ok {
			return nil, fmt.Errorf("field %q: expected list, got %T", field, value.GetKind())
		}
		values := make([]rawrecord.Value, 0, len(list.ListValue.GetValues()))
		for _, element := range list.ListValue.GetValues() {
			switch kind := element.GetKind().(type) {
			case *structpb.Value_StringValue:
				values = append(values, rawrecord.Text(kind.StringValue))
			case *structpb.Value_StructValue:
				nested, err := structToRecord(kind.StructValue)
				if err != nil {
					return nil, err
				}
				values = append(values, rawrecord.Nested(nested))
			default:
				return nil, fmt.Errorf("field %q: expected string or struct element, got %T", field, kind)
			}
		}
		record[field] = values
	}
	return record, nil
}
