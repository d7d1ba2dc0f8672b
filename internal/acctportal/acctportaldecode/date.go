// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportaldecode

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/bufdev/acctportal/internal/standard/xtime"
)

// TransactionStatus is the settlement status derived for a transaction.
type TransactionStatus string

const (
	// TransactionStatusUnknown is returned when the settlement date cannot be parsed.
	TransactionStatusUnknown TransactionStatus = ""
	// TransactionStatusPending is returned when the settlement date is after today.
	TransactionStatusPending TransactionStatus = "Pending"
	// TransactionStatusCompleted is returned when the settlement date is today or earlier.
	TransactionStatusCompleted TransactionStatus = "Completed"
)

// transactionDateCentury is added to the two-digit year of a transaction date.
const transactionDateCentury = "20"

// DecodeTransactionDate decodes a yy/mm/dd transaction date to YYYY-MM-DD.
//
// The input must be exactly eight characters: three groups of two ASCII
// digits separated by slashes. The century is always 2000. The groups are not
// checked for calendar validity. Any other input is returned unchanged.
func DecodeTransactionDate(raw string) string {
	if len(raw) != 8 || raw[2] != '/' || raw[5] != '/' {
		return raw
	}
	year, month, day := raw[0:2], raw[3:5], raw[6:8]
	if !isDigits(year) || !isDigits(month) || !isDigits(day) {
		return raw
	}
	return transactionDateCentury + year + "-" + month + "-" + day
}

// DecodeCalendarDate decodes a generic calendar date to YYYY-MM-DD.
//
// The input is parsed in the given location, and the result is the calendar
// date in that location. Input that cannot be parsed, or that parses to year
// zero, is returned unchanged.
func DecodeCalendarDate(raw string, location *time.Location) string {
	if raw == "" {
		return raw
	}
	t, err := dateparse.ParseIn(raw, location)
	if err != nil {
		return raw
	}
	date := xtime.TimeToDate(t.In(location))
	// Fragments such as "9/" parse without a year.
	if date.Year <= 0 {
		return raw
	}
	return date.String()
}

// ParseTransactionDate decodes a transaction date and parses it as a calendar date.
//
// Returns false if the decoded value is not a valid YYYY-MM-DD date.
func ParseTransactionDate(raw string) (xtime.Date, bool) {
	date, err := xtime.ParseDate(DecodeTransactionDate(raw))
	if err != nil {
		return xtime.Date{}, false
	}
	return date, true
}

// DeriveTransactionStatus derives the status of a transaction from its raw settlement date.
//
// The settlement date is decoded with DecodeTransactionDate. If the result is
// not a valid date, the status is TransactionStatusUnknown. If the settlement
// date is after the calendar date of now, the status is
// TransactionStatusPending. Otherwise it is TransactionStatusCompleted.
func DeriveTransactionStatus(settlementDateRaw string, now time.Time) TransactionStatus {
	settlementDate, ok := ParseTransactionDate(settlementDateRaw)
	if !ok {
		return TransactionStatusUnknown
	}
	if settlementDate.After(xtime.TimeToDate(now)) {
		return TransactionStatusPending
	}
	return TransactionStatusCompleted
}

// *** PRIVATE ***

func isDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
