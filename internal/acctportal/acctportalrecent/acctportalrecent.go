// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalrecent provides the recent activity document, merged
// across multiple accounts.
package acctportalrecent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportaldecode"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/bufdev/acctportal/internal/standard/xtime"
)

const (
	// DefaultMaxRecordsPerAccount is the default maximum number of records kept per account.
	DefaultMaxRecordsPerAccount = 10
	// DefaultMaxDaysPrior is the default maximum age in days of a kept record.
	DefaultMaxDaysPrior = 10
)

// Document is the recent activity document.
type Document struct {
	// RecentActivity is never nil.
	RecentActivity []*acctportalformat.TransactionEntry `json:"recentActivity"`
}

// AccountRef identifies an account at a dealer.
type AccountRef struct {
	AccountNumber string
	DealerCode    string
}

// String returns the account:dealer form of the AccountRef.
func (r AccountRef) String() string {
	return r.AccountNumber + ":" + r.DealerCode
}

// ParseAccountRefs parses a comma-separated list of account:dealer pairs.
//
// Returns an acctportalerror.Error of KindValidationUnparsable if the list is
// empty or any pair is malformed.
func ParseAccountRefs(value string) ([]AccountRef, error) {
	if strings.TrimSpace(value) == "" {
		return nil, acctportalerror.New(acctportalerror.KindValidationUnparsable, "no accounts given", value, nil)
	}
	var accountRefs []AccountRef
	for pair := range strings.SplitSeq(value, ",") {
		accountNumber, dealerCode, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || accountNumber == "" || dealerCode == "" || strings.Contains(dealerCode, ":") {
			return nil, acctportalerror.New(
				acctportalerror.KindValidationUnparsable,
				fmt.Sprintf("invalid account %q, must be of the form account:dealer", pair),
				value,
				nil,
			)
		}
		accountRefs = append(accountRefs, AccountRef{
			AccountNumber: accountNumber,
			DealerCode:    dealerCode,
		})
	}
	return accountRefs, nil
}

// Window bounds the records kept per account.
type Window struct {
	// MaxRecordsPerAccount is the maximum number of records kept per account.
	MaxRecordsPerAccount int
	// MaxDaysPrior is the maximum age in days of a kept record's settlement date.
	MaxDaysPrior int
}

// DefaultWindow returns the default Window.
func DefaultWindow() Window {
	return Window{
		MaxRecordsPerAccount: DefaultMaxRecordsPerAccount,
		MaxDaysPrior:         DefaultMaxDaysPrior,
	}
}

// AccountHistory is the history rows of a single account, in provider order.
type AccountHistory struct {
	AccountNumber string
	Histories     []rawrecord.Record
}

// Aggregator aggregates recent activity across accounts.
type Aggregator struct {
	logger    *slog.Logger
	formatter *acctportalformat.Formatter
	provider  acctportalprovider.Provider
}

// NewAggregator returns a new Aggregator.
func NewAggregator(
	logger *slog.Logger,
	formatter *acctportalformat.Formatter,
	provider acctportalprovider.Provider,
) *Aggregator {
	return &Aggregator{
		logger:    logger,
		formatter: formatter,
		provider:  provider,
	}
}

// Get fetches the history of every account concurrently and merges the results.
//
// All fetches complete before any result is used. If any fetch fails, Get
// returns an acctportalerror.Error of KindUpstreamRequestFailed whose message
// names the first failed account in argument order, with every failure
// joined into its cause. No partial document is returned.
func (a *Aggregator) Get(
	ctx context.Context,
	accountRefs []AccountRef,
	language acctportalcatalog.Language,
	window Window,
	now time.Time,
) (*Document, error) {
	start := time.Now()
	// Each goroutine writes only its own slot.
	accountHistories := make([]AccountHistory, len(accountRefs))
	errs := make([]error, len(accountRefs))
	var waitGroup sync.WaitGroup
	for i, accountRef := range accountRefs {
		waitGroup.Go(func() {
			histories, err := a.fetchHistories(ctx, accountRef)
			if err != nil {
				errs[i] = fmt.Errorf("account %s: %w", accountRef, err)
				return
			}
			accountHistories[i] = AccountHistory{
				AccountNumber: accountRef.AccountNumber,
				Histories:     histories,
			}
		})
	}
	waitGroup.Wait()
	if err := newAggregateError(accountRefs, errs); err != nil {
		a.logger.Warn("recent activity fetch failed", "accounts", len(accountRefs), "error", err)
		return nil, err
	}
	document := &Document{
		RecentActivity: a.Merge(accountHistories, language, window, now),
	}
	a.logger.Debug(
		"recent activity merged",
		"accounts", len(accountRefs),
		"records", len(document.RecentActivity),
		"duration", time.Since(start),
	)
	return document, nil
}

// Merge windows and formats the histories of every account.
//
// For each account in order, the first window.MaxRecordsPerAccount rows whose
// settlement date is on or after the calendar date of now minus
// window.MaxDaysPrior days are kept. Rows with an unparsable settlement date
// are never kept. The result is never nil.
func (a *Aggregator) Merge(
	accountHistories []AccountHistory,
	language acctportalcatalog.Language,
	window Window,
	now time.Time,
) []*acctportalformat.TransactionEntry {
	lowerBound := xtime.TimeToDate(now.In(a.formatter.Location())).AddDays(-window.MaxDaysPrior)
	transactions := make([]*acctportalformat.TransactionEntry, 0)
	for _, accountHistory := range accountHistories {
		kept := 0
		for _, history := range accountHistory.Histories {
			if kept >= window.MaxRecordsPerAccount {
				break
			}
			settlementDate, ok := acctportaldecode.ParseTransactionDate(history.Text(acctportalformat.FieldSettlementDate))
			if !ok || settlementDate.Before(lowerBound) {
				continue
			}
			transactions = append(transactions, a.formatter.FormatTransaction(accountHistory.AccountNumber, history, language, now))
			kept++
		}
	}
	return transactions
}

// *** PRIVATE ***

func (a *Aggregator) fetchHistories(ctx context.Context, accountRef AccountRef) (_ []rawrecord.Record, retErr error) {
	session, err := acctportalprovider.OpenSession(ctx, a.provider, accountRef.DealerCode)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, session.Close())
	}()
	historyResponse, err := session.GetHistory(ctx, accountRef.AccountNumber, "", "")
	if err != nil {
		return nil, acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetHistory, err)
	}
	if err := acctportalformat.RequireSuccess(historyResponse, acctportalprovider.OperationGetHistory); err != nil {
		return nil, err
	}
	return rawrecord.SearchRecords(historyResponse, acctportalformat.SectionAccountHistoryRow), nil
}

func newAggregateError(accountRefs []AccountRef, errs []error) error {
	firstIndex := -1
	var failed []error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if firstIndex < 0 {
			firstIndex = i
		}
		failed = append(failed, err)
	}
	if firstIndex < 0 {
		return nil
	}
	var payload any
	var typedErr *acctportalerror.Error
	if errors.As(errs[firstIndex], &typedErr) {
		payload = typedErr.Payload
	}
	return acctportalerror.NewUpstreamRequestFailed(
		fmt.Sprintf("fetching recent activity for account %s (%d of %d accounts failed)", accountRefs[firstIndex], len(failed), len(accountRefs)),
		payload,
		errors.Join(failed...),
	)
}
