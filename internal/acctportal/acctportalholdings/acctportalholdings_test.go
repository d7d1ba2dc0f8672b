// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalholdings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	t.Parallel()
	assembler := newTestAssembler(t)
	document, err := assembler.Assemble(
		Input{
			AccountNumber: "12345",
			Summaries: []rawrecord.Record{
				rawrecord.FromTexts(map[string]string{
					acctportalformat.FieldAcctNumber:  "12345",
					acctportalformat.FieldMarketValue: "1000.50U",
				}),
			},
			RecipientTypes: []string{"IND"},
			Positions: []rawrecord.Record{
				newPosition("EQ", "500.00", "XYZ"),
				newPosition("FI", "500.50", "BOND"),
			},
		},
		acctportalcatalog.LanguageEnglish,
	)
	require.NoError(t, err)
	holdings := document.AccountHoldings
	require.Equal(t, "1000.5", holdings.AccountSummary.MarketValue.String())
	require.Equal(t, "Individual", holdings.AccountSummary.RecipientTypeDescription)
	require.Len(t, holdings.AssetClassGroup, 2)
	require.Equal(t, "Equities", holdings.AssetClassGroup[0].AssetClassDescription)
	require.Equal(t, "500", holdings.AssetClassGroup[0].AssetClassMarketValue.String())
	require.Equal(t, "Fixed Income", holdings.AssetClassGroup[1].AssetClassDescription)
	require.Equal(t, "500.5", holdings.AssetClassGroup[1].AssetClassMarketValue.String())
	require.Equal(t, "12345", holdings.AssetClassGroup[0].AccountHolding[0].AcctNumber)

	data, err := json.Marshal(document)
	require.NoError(t, err)
	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Contains(t, decoded["accountHoldings"], "accountSummary")
	require.Contains(t, decoded["accountHoldings"], "assetClassGroup")

	rows := TableRows(document)
	require.Len(t, rows, 4)
	require.Len(t, rows[0], len(TableHeaders()))
}

func TestAssembleFrenchOrdering(t *testing.T) {
	t.Parallel()
	assembler := newTestAssembler(t)
	document, err := assembler.Assemble(
		Input{
			Summaries:      []rawrecord.Record{{}},
			RecipientTypes: []string{"IND"},
			Positions: []rawrecord.Record{
				newPosition("ZZ", "1", "UNKNOWN"),
				newPosition("FI", "2", "BOND"),
				newPosition("EQ", "3", "XYZ"),
				newPosition("FI", "4", "BOND2"),
			},
		},
		acctportalcatalog.LanguageFrench,
	)
	require.NoError(t, err)
	groups := document.AccountHoldings.AssetClassGroup
	require.Len(t, groups, 3)
	require.Equal(t, "Actions", groups[0].AssetClassDescription)
	require.Equal(t, "Revenu fixe", groups[1].AssetClassDescription)
	require.Equal(t, "6", groups[1].AssetClassMarketValue.String())
	require.Equal(t, "", groups[2].AssetClassDescription)
}

func TestAssembleMalformed(t *testing.T) {
	t.Parallel()
	assembler := newTestAssembler(t)
	summary := rawrecord.Record{}
	for _, input := range []Input{
		{Summaries: nil, RecipientTypes: []string{"IND"}, Payload: "raw"},
		{Summaries: []rawrecord.Record{summary, summary}, RecipientTypes: []string{"IND"}, Payload: "raw"},
		{Summaries: []rawrecord.Record{summary}, RecipientTypes: nil, Payload: "raw"},
		{Summaries: []rawrecord.Record{summary}, RecipientTypes: []string{"IND", "COR"}, Payload: "raw"},
	} {
		document, err := assembler.Assemble(input, acctportalcatalog.LanguageEnglish)
		require.Nil(t, document)
		require.ErrorIs(t, err, acctportalerror.ErrMalformedUpstreamData)
		var typedErr *acctportalerror.Error
		require.ErrorAs(t, err, &typedErr)
		require.Equal(t, "raw", typedErr.Payload)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()
	assembler := newTestAssembler(t)
	provider := &fakeProvider{
		positions: rawrecord.Record{
			"requestStatus": {rawrecord.Text("SUCCESS")},
			"accountSummaryRow": {rawrecord.Nested(rawrecord.FromTexts(map[string]string{
				"client-id":    "C1",
				"market-value": "10",
			}))},
			"accountPositionRow": {rawrecord.Nested(newPosition("EQ", "10", "XYZ"))},
		},
		clientSummary: rawrecord.FromTexts(map[string]string{
			"requestStatus":  "SUCCESS",
			"recipient-type": "JNT",
		}),
	}
	document, err := assembler.Get(context.Background(), provider, "MLI", "12345", acctportalcatalog.LanguageEnglish)
	require.NoError(t, err)
	require.Equal(t, "C1", provider.clientID)
	require.Equal(t, "Joint", document.AccountHoldings.AccountSummary.RecipientTypeDescription)
	require.Equal(t, 1, provider.closed)
}

func TestGetFailures(t *testing.T) {
	t.Parallel()
	assembler := newTestAssembler(t)
	success := rawrecord.FromTexts(map[string]string{"requestStatus": "SUCCESS", "client-id": "C1"})
	for _, test := range []struct {
		desc     string
		provider *fakeProvider
		want     error
	}{
		{
			desc:     "positions status",
			provider: &fakeProvider{positions: rawrecord.FromTexts(map[string]string{"requestStatus": "ERROR"}), clientSummary: success},
			want:     acctportalerror.ErrUpstreamRequestFailed,
		},
		{
			desc:     "client summary status",
			provider: &fakeProvider{positions: success, clientSummary: rawrecord.FromTexts(map[string]string{"requestStatus": "ERROR"})},
			want:     acctportalerror.ErrUpstreamRequestFailed,
		},
		{
			desc:     "positions fetch",
			provider: &fakeProvider{positionsErr: errors.New("connection reset")},
			want:     acctportalerror.ErrUpstreamRequestFailed,
		},
		{
			desc:     "missing summary",
			provider: &fakeProvider{positions: success, clientSummary: success},
			want:     acctportalerror.ErrMalformedUpstreamData,
		},
	} {
		_, err := assembler.Get(context.Background(), test.provider, "MLI", "12345", acctportalcatalog.LanguageEnglish)
		require.ErrorIs(t, err, test.want, test.desc)
		// The session is closed on every exit path.
		require.Equal(t, 1, test.provider.closed, test.desc)
	}
}

func TestGetFailedPositionsCarriesPayload(t *testing.T) {
	t.Parallel()
	assembler := newTestAssembler(t)
	// A failed positions response has no client ID.
	positions := rawrecord.FromTexts(map[string]string{"requestStatus": "ERROR"})
	provider := &fakeProvider{positions: positions}
	_, err := assembler.Get(context.Background(), provider, "MLI", "12345", acctportalcatalog.LanguageEnglish)
	require.ErrorIs(t, err, acctportalerror.ErrUpstreamRequestFailed)
	var typedErr *acctportalerror.Error
	require.ErrorAs(t, err, &typedErr)
	require.Equal(t, positions, typedErr.Payload)
	require.Contains(t, typedErr.Message, acctportalprovider.OperationGetPositions)
	require.Equal(t, 0, provider.clientSummaryCalls)
	require.Equal(t, 1, provider.closed)
}

func newTestAssembler(t *testing.T) *Assembler {
	catalog, err := acctportalcatalog.LoadDefault()
	require.NoError(t, err)
	return NewAssembler(acctportalformat.NewFormatter(catalog, time.UTC))
}

func newPosition(class string, marketValue string, symbol string) rawrecord.Record {
	return rawrecord.FromTexts(map[string]string{
		acctportalformat.FieldClass:       class,
		acctportalformat.FieldMarketValue: marketValue,
		acctportalformat.FieldSymbol:      symbol,
	})
}

type fakeProvider struct {
	positions          rawrecord.Record
	positionsErr       error
	clientSummary      rawrecord.Record
	clientID           string
	// clientSummaryCalls is the number of GetClientSummary calls.
	clientSummaryCalls int
	closed             int
}

func (p *fakeProvider) Open(context.Context, string) (acctportalprovider.Session, error) {
	return p, nil
}

func (p *fakeProvider) GetPositions(context.Context, string) (rawrecord.Record, error) {
	return p.positions, p.positionsErr
}

func (p *fakeProvider) GetHistory(context.Context, string, string, string) (rawrecord.Record, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) GetClientSummary(_ context.Context, clientID string) (rawrecord.Record, error) {
	p.clientSummaryCalls++
	p.clientID = clientID
	if clientID == "" {
		return nil, errors.New("client ID is required")
	}
	return p.clientSummary, nil
}

func (p *fakeProvider) Close() error {
	p.closed++
	return nil
}
