// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalholdings provides the account holdings document.
//
// Holdings are the account summary plus the account's positions, sorted by
// asset class rank and grouped by localized asset class description, with a
// market value total per group.
package acctportalholdings

import (
	"context"
	"errors"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportaldecode"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
)

// Document is the account holdings document.
type Document struct {
	AccountHoldings *AccountHoldings `json:"accountHoldings"`
}

// AccountHoldings is the body of the account holdings document.
type AccountHoldings struct {
	// AccountSummary is the localized account summary.
	AccountSummary *acctportalformat.AccountSummary `json:"accountSummary"`
	// AssetClassGroup is the list of asset class groups in rank order.
	AssetClassGroup []*acctportalformat.AssetClassGroup `json:"assetClassGroup"`
}

// Input is the raw input to Assemble.
type Input struct {
	// AccountNumber is the requested account number.
	AccountNumber string
	// Summaries are the account summary rows. Exactly one is required.
	Summaries []rawrecord.Record
	// RecipientTypes are the recipient type values. Exactly one is required.
	RecipientTypes []string
	// Positions are the position rows in provider order.
	Positions []rawrecord.Record
	// Payload is the raw response attached to validation errors.
	Payload any
}

// NewInput extracts the Input from a positions response and a client summary response.
func NewInput(accountNumber string, positionsResponse rawrecord.Record, clientSummaryResponse rawrecord.Record) Input {
	return Input{
		AccountNumber:  accountNumber,
		Summaries:      rawrecord.SearchRecords(positionsResponse, acctportalformat.SectionAccountSummaryRow),
		RecipientTypes: acctportalformat.SearchTexts(clientSummaryResponse, acctportalformat.FieldRecipientType),
		Positions:      rawrecord.SearchRecords(positionsResponse, acctportalformat.SectionAccountPositionRow),
		Payload:        positionsResponse,
	}
}

// Assembler assembles account holdings documents.
type Assembler struct {
	formatter *acctportalformat.Formatter
}

// NewAssembler returns a new Assembler.
func NewAssembler(formatter *acctportalformat.Formatter) *Assembler {
	return &Assembler{
		formatter: formatter,
	}
}

// Assemble assembles the holdings document from raw input.
//
// Returns an acctportalerror.Error of KindMalformedUpstreamData if the input
// does not have exactly one summary row and one recipient type.
func (a *Assembler) Assemble(input Input, language acctportalcatalog.Language) (*Document, error) {
	summary, recipientType, err := acctportalformat.RequireSingleSummary(input.Summaries, input.RecipientTypes, input.Payload)
	if err != nil {
		return nil, err
	}
	sortedPositions := a.formatter.SortPositions(input.Positions)
	positionGroups := a.formatter.GroupPositions(sortedPositions, language)
	assetClassGroups := make([]*acctportalformat.AssetClassGroup, 0, len(positionGroups))
	for _, positionGroup := range positionGroups {
		accountHolding := make([]*acctportalformat.AccountPosition, 0, len(positionGroup.Positions))
		for _, position := range positionGroup.Positions {
			accountHolding = append(accountHolding, a.formatter.FormatPosition(input.AccountNumber, position, language))
		}
		assetClassGroups = append(assetClassGroups, &acctportalformat.AssetClassGroup{
			AssetClassDescription: positionGroup.Description,
			AssetClassMarketValue: acctportaldecode.NewNumber(positionGroup.MarketValue),
			AccountHolding:        accountHolding,
		})
	}
	return &Document{
		AccountHoldings: &AccountHoldings{
			AccountSummary:  a.formatter.FormatSummary(summary, recipientType, language),
			AssetClassGroup: assetClassGroups,
		},
	}, nil
}

// Get fetches the account's positions and client summary from the provider
// and assembles the holdings document.
//
// The provider session is closed on every exit path. Provider failures and
// non-success request statuses are returned as an acctportalerror.Error of
// KindUpstreamRequestFailed.
func (a *Assembler) Get(
	ctx context.Context,
	provider acctportalprovider.Provider,
	dealerCode string,
	accountNumber string,
	language acctportalcatalog.Language,
) (_ *Document, retErr error) {
	session, err := acctportalprovider.OpenSession(ctx, provider, dealerCode)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, session.Close())
	}()
	// Step 1: Fetch the positions, which carry the account summary and client ID.
	// A failed positions response has no client ID, so it is checked first.
	positionsResponse, err := session.GetPositions(ctx, accountNumber)
	if err != nil {
		return nil, acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetPositions, err)
	}
	if err := acctportalformat.RequireSuccess(positionsResponse, acctportalprovider.OperationGetPositions); err != nil {
		return nil, err
	}
	// Step 2: Fetch the client summary, which carries the recipient type.
	clientID := rawrecord.SearchText(positionsResponse, acctportalformat.FieldClientID)
	clientSummaryResponse, err := session.GetClientSummary(ctx, clientID)
	if err != nil {
		return nil, acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetClientSummary, err)
	}
	if err := acctportalformat.RequireSuccess(clientSummaryResponse, acctportalprovider.OperationGetClientSummary); err != nil {
		return nil, err
	}
	return a.Assemble(NewInput(accountNumber, positionsResponse, clientSummaryResponse), language)
}

// TableHeaders returns the column headers for table output.
func TableHeaders() []string {
	return []string{"ASSET CLASS", "SYMBOL", "DESCRIPTION", "QUANTITY", "PRICE", "MARKET VALUE", "GAIN"}
}

// TableRows converts the document to rows for table output.
//
// Each group's positions are followed by a subtotal row.
func TableRows(document *Document) [][]string {
	var rows [][]string
	for _, group := range document.AccountHoldings.AssetClassGroup {
		for _, position := range group.AccountHolding {
			rows = append(rows, []string{
				group.AssetClassDescription,
				position.Symbol,
				position.SymbolDescription,
				position.Quantity.String(),
				position.Price.String(),
				position.MarketValue.String(),
				position.Gain.String(),
			})
		}
		rows = append(rows, []string{group.AssetClassDescription, "", "SUBTOTAL", "", "", group.AssetClassMarketValue.String(), ""})
	}
	return rows
}
