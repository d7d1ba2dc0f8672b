// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportaldecode decodes individual scalar field values and dates
// from the account-data provider's record format.
//
// Every decoder follows a passthrough policy: input that cannot be decoded is
// returned unchanged rather than reported as an error.
package acctportaldecode

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MarkerCanadian is the trailing marker for Canadian currency or country of issue.
	MarkerCanadian = "C"
	// MarkerUS is the trailing marker for US currency or country of issue.
	MarkerUS = "U"
)

// numeralRegexp matches a plain decimal numeral with an optional sign and an
// optional exponent of at most two digits.
//
// The exponent is bounded so that the decimal string form of a Number stays
// proportional to the length of its raw value.
var numeralRegexp = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d{1,2})?$`)

// Number is a decoded coded number.
//
// A Number is either numeric, holding a decimal value, or a passthrough of
// the raw string that could not be decoded.
type Number struct {
	value   decimal.Decimal
	raw     string
	numeric bool
}

// NewNumber returns a numeric Number for the given decimal value.
func NewNumber(value decimal.Decimal) Number {
	return Number{
		value:   value,
		raw:     value.String(),
		numeric: true,
	}
}

// DecodeNumber decodes a coded number.
//
// One trailing C or U marker is stripped. If the remainder is a decimal
// numeral, the result is numeric. Otherwise the result is a passthrough of
// raw, unchanged. An empty remainder is a passthrough, as is an exponent of
// more than two digits.
func DecodeNumber(raw string) Number {
	numeral := strings.TrimSpace(stripMarker(raw))
	if !numeralRegexp.MatchString(numeral) {
		return Number{raw: raw}
	}
	value, err := decimal.NewFromString(numeral)
	if err != nil {
		return Number{raw: raw}
	}
	return Number{
		value:   value,
		raw:     raw,
		numeric: true,
	}
}

// DecodeCountryOfIssue returns the trailing C or U marker of raw, or "" if there is none.
//
// This uses the same suffix convention as DecodeNumber, but the marker itself
// is the payload.
func DecodeCountryOfIssue(raw string) string {
	switch {
	case strings.HasSuffix(raw, MarkerCanadian):
		return MarkerCanadian
	case strings.HasSuffix(raw, MarkerUS):
		return MarkerUS
	default:
		return ""
	}
}

// IsNumeric returns true if the Number was decoded to a decimal value.
func (n Number) IsNumeric() bool {
	return n.numeric
}

// Decimal returns the decimal value, or zero for a passthrough.
func (n Number) Decimal() decimal.Decimal {
	if !n.numeric {
		return decimal.Zero
	}
	return n.value
}

// String returns the decimal value for a numeric Number, or the raw string otherwise.
func (n Number) String() string {
	if n.numeric {
		return n.value.String()
	}
	return n.raw
}

// Equal returns true if both Numbers are numeric with equal values, or both
// are passthroughs of the same raw string.
func (n Number) Equal(other Number) bool {
	if n.numeric != other.numeric {
		return false
	}
	if n.numeric {
		return n.value.Equal(other.value)
	}
	return n.raw == other.raw
}

// MarshalJSON implements json.Marshaler.
//
// A numeric Number is a JSON number. A passthrough is a JSON string.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.numeric {
		return []byte(n.value.String()), nil
	}
	return json.Marshal(n.raw)
}

// *** PRIVATE ***

func stripMarker(raw string) string {
	if strings.HasSuffix(raw, MarkerCanadian) || strings.HasSuffix(raw, MarkerUS) {
		return raw[:len(raw)-1]
	}
	return raw
}
