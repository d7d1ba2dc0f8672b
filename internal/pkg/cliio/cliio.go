// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cliio provides output formatting for CLI commands (table, CSV, JSON).
package cliio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Format represents the output format for CLI commands.
type Format string

const (
	// FormatTable is the table output format.
	FormatTable Format = "table"
	// FormatCSV is the CSV output format.
	FormatCSV Format = "csv"
	// FormatJSON is the default JSON output format.
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: json, table, csv", s)
	}
}

// Table is the tabular rendering of a document.
type Table struct {
	Headers []string
	Rows    [][]string
	// TotalsRow is an optional final row, separated from the data rows in table output.
	TotalsRow []string
}

// Write writes the object as JSON, or the table as a table or CSV, depending on the format.
func Write[O any](writer io.Writer, format Format, object O, table Table) error {
	switch format {
	case FormatJSON:
		return WriteJSON(writer, object)
	case FormatTable:
		if table.TotalsRow != nil {
			return WriteTableWithTotals(writer, table.Headers, table.Rows, table.TotalsRow)
		}
		return WriteTable(writer, table.Headers, table.Rows)
	case FormatCSV:
		records := make([][]string, 0, len(table.Rows)+2)
		records = append(records, table.Headers)
		records = append(records, table.Rows...)
		if table.TotalsRow != nil {
			records = append(records, table.TotalsRow)
		}
		return WriteCSVRecords(writer, records)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteTable writes tabular data to the writer using tabwriter for aligned columns.
func WriteTable(writer io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if err := writeRows(tw, headers, rows); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteTableWithTotals writes a table followed by a blank line and a totals row,
// all through the same tabwriter so columns align between data and totals.
func WriteTableWithTotals(writer io.Writer, headers []string, rows [][]string, totalsRow []string) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if err := writeRows(tw, headers, rows); err != nil {
		return err
	}
	// A blank row of tabs preserves column alignment.
	if _, err := fmt.Fprintln(tw, strings.Join(make([]string, len(headers)), "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(tw, strings.Join(totalsRow, "\t")); err != nil {
		return err
	}
	return tw.Flush()
}

// WriteCSVRecords writes CSV records to the writer.
func WriteCSVRecords(writer io.Writer, records [][]string) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.WriteAll(records); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteJSON writes objects as JSON with newlines between each object.
func WriteJSON[O any](writer io.Writer, objects ...O) error {
	encoder := json.NewEncoder(writer)
	for _, object := range objects {
		if err := encoder.Encode(object); err != nil {
			return err
		}
	}
	return nil
}

// *** PRIVATE ***

func writeRows(writer io.Writer, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
