// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalerror provides the typed errors returned by the account
// portal engine.
//
// Individual field decode failures never produce errors; they degrade to
// passthrough of the raw value. Only structural failures produce an Error.
package acctportalerror

import (
	"errors"
	"fmt"
)

// Kind is the kind of an Error.
type Kind int

const (
	// KindUnknown is the zero Kind.
	KindUnknown Kind = iota
	// KindMalformedUpstreamData is returned when a provider response has
	// missing or duplicated required sections.
	KindMalformedUpstreamData
	// KindUpstreamRequestFailed is returned when a provider response has a
	// non-success status, or a provider fetch failed.
	KindUpstreamRequestFailed
	// KindValidationUnparsable is reserved for request validation. The engine
	// itself never returns it.
	KindValidationUnparsable
	// KindCatalogLoadFailure is returned when a localization table cannot be loaded.
	KindCatalogLoadFailure
)

var (
	// ErrMalformedUpstreamData matches any Error of KindMalformedUpstreamData via errors.Is.
	ErrMalformedUpstreamData = errors.New("malformed upstream data")
	// ErrUpstreamRequestFailed matches any Error of KindUpstreamRequestFailed via errors.Is.
	ErrUpstreamRequestFailed = errors.New("upstream request failed")
	// ErrValidationUnparsable matches any Error of KindValidationUnparsable via errors.Is.
	ErrValidationUnparsable = errors.New("validation unparsable")
	// ErrCatalogLoadFailure matches any Error of KindCatalogLoadFailure via errors.Is.
	ErrCatalogLoadFailure = errors.New("catalog load failure")
)

// String returns the name of the Kind.
func (k Kind) String() string {
	switch k {
	case KindMalformedUpstreamData:
		return "MalformedUpstreamData"
	case KindUpstreamRequestFailed:
		return "UpstreamRequestFailed"
	case KindValidationUnparsable:
		return "ValidationUnparsable"
	case KindCatalogLoadFailure:
		return "CatalogLoadFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a typed engine error.
type Error struct {
	// Kind is the kind of error.
	Kind Kind
	// Message is a human-readable description.
	Message string
	// Payload is the offending raw data, kept for diagnostics. May be nil.
	Payload any
	// Cause is the underlying error. May be nil.
	Cause error
}

// New returns a new Error.
func New(kind Kind, message string, payload any, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Payload: payload,
		Cause:   cause,
	}
}

// NewMalformedUpstreamData returns a new Error of KindMalformedUpstreamData.
func NewMalformedUpstreamData(message string, payload any) *Error {
	return New(KindMalformedUpstreamData, message, payload, nil)
}

// NewUpstreamRequestFailed returns a new Error of KindUpstreamRequestFailed.
func NewUpstreamRequestFailed(message string, payload any, cause error) *Error {
	return New(KindUpstreamRequestFailed, message, payload, cause)
}

// NewCatalogLoadFailure returns a new Error of KindCatalogLoadFailure.
func NewCatalogLoadFailure(message string, cause error) *Error {
	return New(KindCatalogLoadFailure, message, nil, cause)
}

// Error implements error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the sentinel for the Kind and the Cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if sentinel := kindToSentinel(e.Kind); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// KindOf returns the Kind of the first Error in err's tree, or KindUnknown.
func KindOf(err error) Kind {
	var typedErr *Error
	if errors.As(err, &typedErr) {
		return typedErr.Kind
	}
	return KindUnknown
}

// *** PRIVATE ***

func kindToSentinel(kind Kind) error {
	switch kind {
	case KindMalformedUpstreamData:
		return ErrMalformedUpstreamData
	case KindUpstreamRequestFailed:
		return ErrUpstreamRequestFailed
	case KindValidationUnparsable:
		return ErrValidationUnparsable
	case KindCatalogLoadFailure:
		return ErrCatalogLoadFailure
	default:
		return nil
	}
}
