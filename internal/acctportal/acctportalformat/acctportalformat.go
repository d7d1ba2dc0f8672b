// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalformat provides the formatting primitives shared by the
// holdings, activity, and recent activity documents.
//
// A Formatter projects raw provider rows into localized, decoded output
// structures. Formatting never fails: fields that cannot be decoded are
// passed through as their raw values, and missing fields read as "".
package acctportalformat

import (
	"time"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportaldecode"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
)

// AccountSummary is the normalized projection of the provider's account summary row.
type AccountSummary struct {
	Stat                     string                  `json:"stat"`
	RecipientType            string                  `json:"recipientType"`
	RecipientTypeDescription string                  `json:"recipientTypeDescription"`
	AcctNumber               string                  `json:"acctNumber"`
	AcctName                 string                  `json:"acctName"`
	ClientID                 string                  `json:"clientId"`
	IACode                   string                  `json:"iaCode"`
	AcctType                 string                  `json:"acctType"`
	AcctSub                  string                  `json:"acctSub"`
	AcctTypeDescription      string                  `json:"acctTypeDescription"`
	Funds                    string                  `json:"funds"`
	FundsDescription         string                  `json:"fundsDescription"`
	AcctDescription          string                  `json:"acctDescription"`
	AcctStatus               string                  `json:"acctStatus"`
	AcctStatusDescription    string                  `json:"acctStatusDescription"`
	AcctDivisionCode         string                  `json:"acctDivisionCode"`
	TradeCash                acctportaldecode.Number `json:"tradeCash"`
	SettlementCash           acctportaldecode.Number `json:"settlementCash"`
	MarketValue              acctportaldecode.Number `json:"marketValue"`
	EquityValue              acctportaldecode.Number `json:"equityValue"`
	MarginAvail              acctportaldecode.Number `json:"marginAvail"`
	LoanValue                acctportaldecode.Number `json:"loanValue"`
	LastStatementDate        string                  `json:"lastStatementDate"`
	PortType                 string                  `json:"portType"`
	PortTypeDescription      string                  `json:"portTypeDescription"`
	BookValue                acctportaldecode.Number `json:"bookValue"`
	BeneficiaryName          string                  `json:"beneficiaryName"`
}

// AccountPosition is the normalized projection of a provider position row.
type AccountPosition struct {
	AcctNumber            string                  `json:"acctNumber"`
	Stat                  string                  `json:"stat"`
	SecurityType          string                  `json:"securityType"`
	Symbol                string                  `json:"symbol"`
	Exchange              string                  `json:"exchange"`
	CallPut               string                  `json:"callPut"`
	ExpiryDate            string                  `json:"expiryDate"`
	StrikePrice           acctportaldecode.Number `json:"strikePrice"`
	CodedSymbol           string                  `json:"codedSymbol"`
	SymbolDescription     string                  `json:"symbolDescription"`
	Quantity              acctportaldecode.Number `json:"quantity"`
	PendingQuantity       acctportaldecode.Number `json:"pendingQuantity"`
	Price                 acctportaldecode.Number `json:"price"`
	CountryOfIssue        string                  `json:"countryOfIssue"`
	MarketValue           acctportaldecode.Number `json:"marketValue"`
	HoldingPercentage     acctportaldecode.Number `json:"holdingPercentage"`
	AverageCost           acctportaldecode.Number `json:"averageCost"`
	AssetClass            string                  `json:"assetClass"`
	AssetClassDescription string                  `json:"assetClassDescription"`
	Gain                  acctportaldecode.Number `json:"gain"`
}

// AssetClassGroup is a group of positions sharing a localized asset class description.
type AssetClassGroup struct {
	AssetClassDescription string                  `json:"assetClassDescription"`
	AssetClassMarketValue acctportaldecode.Number `json:"assetClassMarketValue"`
	AccountHolding        []*AccountPosition      `json:"accountHolding"`
}

// TransactionEntry is the normalized projection of a provider history row.
type TransactionEntry struct {
	AcctNumber          string                             `json:"acctNumber"`
	Stat                string                             `json:"stat"`
	Activity            string                             `json:"activity"`
	ActivityDescription string                             `json:"activityDescription"`
	ProcessingDate      string                             `json:"processingDate"`
	SettlementDate      string                             `json:"settlementDate"`
	Description         string                             `json:"description"`
	Quantity            acctportaldecode.Number            `json:"quantity"`
	Price               acctportaldecode.Number            `json:"price"`
	Commission          acctportaldecode.Number            `json:"commission"`
	NetAmount           acctportaldecode.Number            `json:"netAmount"`
	TransactionStatus   acctportaldecode.TransactionStatus `json:"transactionStatus"`
}

// Formatter formats raw provider rows.
//
// A Formatter is safe for concurrent use.
type Formatter struct {
	catalog  *acctportalcatalog.Catalog
	location *time.Location
}

// NewFormatter returns a new Formatter.
//
// The location is used to resolve generic calendar dates. If nil, time.Local is used.
func NewFormatter(catalog *acctportalcatalog.Catalog, location *time.Location) *Formatter {
	if location == nil {
		location = time.Local
	}
	return &Formatter{
		catalog:  catalog,
		location: location,
	}
}

// Catalog returns the Formatter's catalog.
func (f *Formatter) Catalog() *acctportalcatalog.Catalog {
	return f.catalog
}

// Location returns the Formatter's location.
func (f *Formatter) Location() *time.Location {
	return f.location
}

// FormatSummary formats an account summary row.
func (f *Formatter) FormatSummary(summary rawrecord.Record, recipientType string, language acctportalcatalog.Language) *AccountSummary {
	return &AccountSummary{
		Stat:                     summary.Text(FieldStat),
		RecipientType:            recipientType,
		RecipientTypeDescription: f.catalog.Lookup(acctportalcatalog.TableRecipientType, recipientType, language),
		AcctNumber:               summary.Text(FieldAcctNumber),
		AcctName:                 summary.Text(FieldAcctName),
		ClientID:                 summary.Text(FieldClientID),
		IACode:                   summary.Text(FieldIACode),
		AcctType:                 summary.Text(FieldAcctType),
		AcctSub:                  summary.Text(FieldAcctSub),
		AcctTypeDescription:      f.catalog.LookupAccountType(summary.Text(FieldAcctType), summary.Text(FieldAcctSub), language),
		Funds:                    summary.Text(FieldFunds),
		FundsDescription:         f.catalog.Lookup(acctportalcatalog.TableFundCode, summary.Text(FieldFunds), language),
		AcctDescription:          summary.Text(FieldAcctDescription),
		AcctStatus:               summary.Text(FieldAcctStatus),
		AcctStatusDescription:    f.catalog.Lookup(acctportalcatalog.TableAccountStatus, summary.Text(FieldAcctStatus), language),
		AcctDivisionCode:         summary.Text(FieldAcctDivisionCode),
		TradeCash:                acctportaldecode.DecodeNumber(summary.Text(FieldTradeCash)),
		SettlementCash:           acctportaldecode.DecodeNumber(summary.Text(FieldSettlementCash)),
		MarketValue:              acctportaldecode.DecodeNumber(summary.Text(FieldMarketValue)),
		EquityValue:              acctportaldecode.DecodeNumber(summary.Text(FieldEquityValue)),
		MarginAvail:              acctportaldecode.DecodeNumber(summary.Text(FieldMarginAvail)),
		LoanValue:                acctportaldecode.DecodeNumber(summary.Text(FieldLoanValue)),
		LastStatementDate:        acctportaldecode.DecodeCalendarDate(summary.Text(FieldLastStatementDate), f.location),
		PortType:                 summary.Text(FieldPortType),
		PortTypeDescription:      f.catalog.Lookup(acctportalcatalog.TablePortFlag, summary.Text(FieldPortType), language),
		BookValue:                acctportaldecode.DecodeNumber(summary.Text(FieldBookValue)),
		BeneficiaryName:          summary.Text(FieldBenefName),
	}
}

// FormatPosition formats a position row for the given account.
func (f *Formatter) FormatPosition(accountNumber string, position rawrecord.Record, language acctportalcatalog.Language) *AccountPosition {
	return &AccountPosition{
		AcctNumber:        accountNumber,
		Stat:              position.Text(FieldStat),
		SecurityType:      position.Text(FieldSecurityType),
		Symbol:            position.Text(FieldSymbol),
		Exchange:          position.Text(FieldExchange),
		CallPut:           position.Text(FieldCallPut),
		ExpiryDate:        acctportaldecode.DecodeCalendarDate(position.Text(FieldExpiryDate), f.location),
		StrikePrice:       acctportaldecode.DecodeNumber(position.Text(FieldStrikePrice)),
		CodedSymbol:       position.Text(FieldCodedSymbol),
		SymbolDescription: position.Text(FieldSymbolDescription),
		Quantity:          acctportaldecode.DecodeNumber(position.Text(FieldQuantity)),
		PendingQuantity:   acctportaldecode.DecodeNumber(position.Text(FieldPendingQuantity)),
		Price:             acctportaldecode.DecodeNumber(position.Text(FieldPrice)),
		// The price field's marker is the country of issue.
		CountryOfIssue:        acctportaldecode.DecodeCountryOfIssue(position.Text(FieldPrice)),
		MarketValue:           acctportaldecode.DecodeNumber(position.Text(FieldMarketValue)),
		HoldingPercentage:     acctportaldecode.DecodeNumber(position.Text(FieldHoldingPercentage)),
		AverageCost:           acctportaldecode.DecodeNumber(position.Text(FieldAverageCost)),
		AssetClass:            position.Text(FieldClass),
		AssetClassDescription: f.catalog.Lookup(acctportalcatalog.TableAssetClass, position.Text(FieldClass), language),
		Gain:                  acctportaldecode.DecodeNumber(position.Text(FieldGain)),
	}
}

// FormatTransaction formats a history row for the given account.
//
// The transaction status is derived relative to now.
func (f *Formatter) FormatTransaction(
	accountNumber string,
	history rawrecord.Record,
	language acctportalcatalog.Language,
	now time.Time,
) *TransactionEntry {
	return &TransactionEntry{
		AcctNumber:          accountNumber,
		Stat:                history.Text(FieldStat),
		Activity:            history.Text(FieldActivity),
		ActivityDescription: f.catalog.Lookup(acctportalcatalog.TableTransactionCode, history.Text(FieldActivity), language),
		ProcessingDate:      acctportaldecode.DecodeTransactionDate(history.Text(FieldProcessingDate)),
		SettlementDate:      acctportaldecode.DecodeTransactionDate(history.Text(FieldSettlementDate)),
		Description:         history.Text(FieldDescription),
		Quantity:            acctportaldecode.DecodeNumber(history.Text(FieldQuantity)),
		Price:               acctportaldecode.DecodeNumber(history.Text(FieldPrice)),
		Commission:          acctportaldecode.DecodeNumber(history.Text(FieldCommission)),
		NetAmount:           acctportaldecode.DecodeNumber(history.Text(FieldNetAmount)),
		TransactionStatus:   acctportaldecode.DeriveTransactionStatus(history.Text(FieldSettlementDate), now.In(f.location)),
	}
}
