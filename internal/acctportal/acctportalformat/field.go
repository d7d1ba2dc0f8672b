// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalformat

// Raw provider field and section names.
const (
	FieldRequestStatus = "requestStatus"
	FieldRecipientType = "recipient-type"
	FieldClientID      = "client-id"
	FieldFirstNavKey   = "firstNavKey"
	FieldLastNavKey    = "lastNavKey"

	SectionAccountSummaryRow  = "accountSummaryRow"
	SectionAccountPositionRow = "accountPositionRow"
	SectionAccountHistoryRow  = "accountHistoryRow"

	FieldStat              = "stat"
	FieldAcctNumber        = "acct-number"
	FieldAcctName          = "acct-name"
	FieldIACode            = "ia-code"
	FieldAcctType          = "acct-type"
	FieldAcctSub           = "acct-sub"
	FieldFunds             = "funds"
	FieldAcctDescription   = "acct-description"
	FieldAcctStatus        = "acct-status"
	FieldAcctDivisionCode  = "acct-division-code"
	FieldTradeCash         = "trade-cash"
	FieldSettlementCash    = "settlement-cash"
	FieldMarketValue       = "market-value"
	FieldEquityValue       = "equity-value"
	FieldMarginAvail       = "margin-avail"
	FieldLoanValue         = "loan-value"
	FieldLastStatementDate = "last-statement-date"
	FieldPortType          = "port-type"
	FieldBookValue         = "book-value"
	FieldBenefName         = "benef-name"

	FieldSecurityType      = "security-type"
	FieldSymbol            = "symbol"
	FieldExchange          = "exchange"
	FieldCallPut           = "call-put"
	FieldExpiryDate        = "expiry-date"
	FieldStrikePrice       = "strike-price"
	FieldCodedSymbol       = "coded-symbol"
	FieldSymbolDescription = "symbol-description"
	FieldQuantity          = "quantity"
	FieldPendingQuantity   = "pending-quantity"
	FieldPrice             = "price"
	FieldHoldingPercentage = "holding-percentage"
	FieldAverageCost       = "average-cost"
	FieldClass             = "class"
	FieldGain              = "gain"

	FieldActivity       = "activity"
	FieldProcessingDate = "processing-date"
	FieldSettlementDate = "settlement-date"
	FieldDescription    = "description"
	FieldCommission     = "commission"
	FieldNetAmount      = "net-amount"
)

// StatusSuccess is the value of FieldRequestStatus for a successful provider response.
const StatusSuccess = "SUCCESS"
