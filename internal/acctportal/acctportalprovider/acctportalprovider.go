// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalprovider defines the account-data provider collaborator
// and its implementations.
//
// A Provider opens a Session per request for a dealer. The Session must be
// closed on every exit path once the request is done with it.
package acctportalprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
)

const (
	// OperationGetPositions is the name of the positions operation.
	OperationGetPositions = "GetPositions"
	// OperationGetHistory is the name of the history operation.
	OperationGetHistory = "GetHistory"
	// OperationGetClientSummary is the name of the client summary operation.
	OperationGetClientSummary = "GetClientSummary"
)

// ErrUnknownDealer is returned by Provider.Open for a dealer code with no configured endpoint.
var ErrUnknownDealer = errors.New("unknown dealer code")

// Provider opens sessions against the account-data provider.
type Provider interface {
	// Open opens a new Session for the dealer.
	//
	// Returns an error wrapping ErrUnknownDealer if the dealer is not configured.
	Open(ctx context.Context, dealerCode string) (Session, error)
}

// Session is a request-scoped connection to the account-data provider.
type Session interface {
	// GetPositions returns the positions response for the account.
	GetPositions(ctx context.Context, accountNumber string) (rawrecord.Record, error)
	// GetHistory returns the history response for the account.
	//
	// The navigation keys select a page of history. Empty keys select the most recent page.
	GetHistory(ctx context.Context, accountNumber string, firstNavKey string, lastNavKey string) (rawrecord.Record, error)
	// GetClientSummary returns the client summary response for the client.
	GetClientSummary(ctx context.Context, clientID string) (rawrecord.Record, error)
	// Close releases the resources held by the Session.
	Close() error
}

// NewUpstreamError wraps a provider failure as an acctportalerror.Error of KindUpstreamRequestFailed.
//
// Errors that are already an acctportalerror.Error are returned unchanged.
func NewUpstreamError(operation string, err error) error {
	var typedErr *acctportalerror.Error
	if errors.As(err, &typedErr) {
		return err
	}
	return acctportalerror.NewUpstreamRequestFailed(fmt.Sprintf("%s failed", operation), nil, err)
}

// OpenSession opens a Session, wrapping failures with NewUpstreamError.
func OpenSession(ctx context.Context, provider Provider, dealerCode string) (Session, error) {
	session, err := provider.Open(ctx, dealerCode)
	if err != nil {
		return nil, NewUpstreamError(fmt.Sprintf("opening session for dealer %q", dealerCode), err)
	}
	return session, nil
}
