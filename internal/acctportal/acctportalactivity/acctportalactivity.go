// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalactivity provides the account activity document.
package acctportalactivity

import (
	"context"
	"errors"
	"time"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportaldecode"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
)

// Document is the account activity document.
type Document struct {
	AccountActivity *AccountActivity `json:"accountActivity"`
}

// AccountActivity is the body of the account activity document.
type AccountActivity struct {
	AccountSummary     *acctportalformat.AccountSummary     `json:"accountSummary"`
	AccountTransaction []*acctportalformat.TransactionEntry `json:"accountTransaction"`
	HistoryNavigation  *HistoryNavigation                   `json:"historyNavigation"`
}

// HistoryNavigation holds the cursors of the returned history page.
//
// The cursors are coded numbers.
type HistoryNavigation struct {
	FirstNavKey acctportaldecode.Number `json:"firstNavKey"`
	LastNavKey  acctportaldecode.Number `json:"lastNavKey"`
}

// Input is the raw input to Assemble.
type Input struct {
	AccountNumber  string
	Summaries      []rawrecord.Record
	RecipientTypes []string
	// Histories are the history rows in provider order.
	Histories   []rawrecord.Record
	FirstNavKey string
	LastNavKey  string
	// Payload is the raw response attached to validation errors.
	Payload any
}

// NewInput extracts the Input from a history response and a client summary response.
func NewInput(accountNumber string, historyResponse rawrecord.Record, clientSummaryResponse rawrecord.Record) Input {
	return Input{
		AccountNumber:  accountNumber,
		Summaries:      rawrecord.SearchRecords(historyResponse, acctportalformat.SectionAccountSummaryRow),
		RecipientTypes: acctportalformat.SearchTexts(clientSummaryResponse, acctportalformat.FieldRecipientType),
		Histories:      rawrecord.SearchRecords(historyResponse, acctportalformat.SectionAccountHistoryRow),
		FirstNavKey:    rawrecord.SearchText(historyResponse, acctportalformat.FieldFirstNavKey),
		LastNavKey:     rawrecord.SearchText(historyResponse, acctportalformat.FieldLastNavKey),
		Payload:        historyResponse,
	}
}

// Assembler assembles account activity documents.
type Assembler struct {
	formatter *acctportalformat.Formatter
}

// NewAssembler returns a new Assembler.
func NewAssembler(formatter *acctportalformat.Formatter) *Assembler {
	return &Assembler{
		formatter: formatter,
	}
}

// Assemble assembles the activity document from raw input.
//
// Every history row is included in provider order. Transaction statuses are
// derived relative to now.
func (a *Assembler) Assemble(input Input, language acctportalcatalog.Language, now time.Time) (*Document, error) {
	summary, recipientType, err := acctportalformat.RequireSingleSummary(input.Summaries, input.RecipientTypes, input.Payload)
	if err != nil {
		return nil, err
	}
	transactions := make([]*acctportalformat.TransactionEntry, 0, len(input.Histories))
	for _, history := range input.Histories {
		transactions = append(transactions, a.formatter.FormatTransaction(input.AccountNumber, history, language, now))
	}
	return &Document{
		AccountActivity: &AccountActivity{
			AccountSummary:     a.formatter.FormatSummary(summary, recipientType, language),
			AccountTransaction: transactions,
			HistoryNavigation: &HistoryNavigation{
				FirstNavKey: acctportaldecode.DecodeNumber(input.FirstNavKey),
				LastNavKey:  acctportaldecode.DecodeNumber(input.LastNavKey),
			},
		},
	}, nil
}

// Get fetches the account's history page and client summary from the provider
// and assembles the activity document.
//
// Empty navigation keys select the most recent page.
func (a *Assembler) Get(
	ctx context.Context,
	provider acctportalprovider.Provider,
	dealerCode string,
	accountNumber string,
	firstNavKey string,
	lastNavKey string,
	language acctportalcatalog.Language,
	now time.Time,
) (_ *Document, retErr error) {
	session, err := acctportalprovider.OpenSession(ctx, provider, dealerCode)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, session.Close())
	}()
	historyResponse, err := session.GetHistory(ctx, accountNumber, firstNavKey, lastNavKey)
	if err != nil {
		return nil, acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetHistory, err)
	}
	if err := acctportalformat.RequireSuccess(historyResponse, acctportalprovider.OperationGetHistory); err != nil {
		return nil, err
	}
	clientID := rawrecord.SearchText(historyResponse, acctportalformat.FieldClientID)
	clientSummaryResponse, err := session.GetClientSummary(ctx, clientID)
	if err != nil {
		return nil, acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetClientSummary, err)
	}
	if err := acctportalformat.RequireSuccess(clientSummaryResponse, acctportalprovider.OperationGetClientSummary); err != nil {
		return nil, err
	}
	return a.Assemble(NewInput(accountNumber, historyResponse, clientSummaryResponse), language, now)
}

// TableHeaders returns the column headers for table output.
func TableHeaders() []string {
	return TransactionTableHeaders()
}

// TableRows converts the document to rows for table output.
func TableRows(document *Document) [][]string {
	return TransactionTableRows(document.AccountActivity.AccountTransaction)
}

// TransactionTableHeaders returns the column headers for a transaction table.
func TransactionTableHeaders() []string {
	return []string{"ACCOUNT", "SETTLEMENT", "ACTIVITY", "DESCRIPTION", "QUANTITY", "PRICE", "NET AMOUNT", "STATUS"}
}

// TransactionTableRows converts transactions to rows for a transaction table.
func TransactionTableRows(transactions []*acctportalformat.TransactionEntry) [][]string {
	rows := make([][]string, 0, len(transactions))
	for _, transaction := range transactions {
		activity := transaction.ActivityDescription
		if activity == "" {
			activity = transaction.Activity
		}
		rows = append(rows, []string{
			transaction.AcctNumber,
			transaction.SettlementDate,
			activity,
			transaction.Description,
			transaction.Quantity.String(),
			transaction.Price.String(),
			transaction.NetAmount.String(),
			string(transaction.TransactionStatus),
		})
	}
	return rows
}
