// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalprovider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"github.com/bufdev/acctportal/internal/pkg/dataphile"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/stretchr/testify/require"
)

func TestRecordAndReplay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dirPath := t.TempDir()
	delegate := &fakeProvider{
		dealerCode: "MLI",
		positions:  rawrecord.FromTexts(map[string]string{"requestStatus": "SUCCESS", "client-id": "C1"}),
		history:    rawrecord.FromTexts(map[string]string{"requestStatus": "SUCCESS", "firstNavKey": "10"}),
		summary:    rawrecord.FromTexts(map[string]string{"requestStatus": "SUCCESS", "recipient-type": "IND"}),
	}
	recording := NewRecordingProvider(delegate, dirPath)
	session, err := recording.Open(ctx, "MLI")
	require.NoError(t, err)
	_, err = session.GetPositions(ctx, "12345")
	require.NoError(t, err)
	_, err = session.GetHistory(ctx, "12345", "", "")
	require.NoError(t, err)
	_, err = session.GetHistory(ctx, "12345", "10", "20")
	require.NoError(t, err)
	_, err = session.GetClientSummary(ctx, "C1")
	require.NoError(t, err)
	require.NoError(t, session.Close())
	require.Equal(t, 1, delegate.closed)

	replay := NewReplayProvider(dirPath)
	session, err = replay.Open(ctx, "MLI")
	require.NoError(t, err)
	defer func() { require.NoError(t, session.Close()) }()
	positions, err := session.GetPositions(ctx, "12345")
	require.NoError(t, err)
	require.Equal(t, "C1", positions.Text("client-id"))
	history, err := session.GetHistory(ctx, "12345", "10", "20")
	require.NoError(t, err)
	require.Equal(t, "10", history.Text("firstNavKey"))
	summary, err := session.GetClientSummary(ctx, "C1")
	require.NoError(t, err)
	require.Equal(t, "IND", summary.Text("recipient-type"))
	// Responses that were not recorded are errors.
	_, err = session.GetPositions(ctx, "99999")
	require.Error(t, err)

	_, err = replay.Open(ctx, "OTHER")
	require.ErrorIs(t, err, ErrUnknownDealer)
}

func TestDataphileProvider(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<Envelope><Body><R><requestStatus>SUCCESS</requestStatus></R></Body></Envelope>`)
	}))
	defer server.Close()
	provider := NewDataphileProvider(
		slog.New(slog.DiscardHandler),
		map[string]DealerEndpoint{
			"MLI": {Endpoint: dataphile.Endpoint{URL: server.URL}},
		},
	)
	ctx := context.Background()
	session, err := provider.Open(ctx, "MLI")
	require.NoError(t, err)
	defer session.Close()
	record, err := session.GetPositions(ctx, "12345")
	require.NoError(t, err)
	require.Equal(t, "SUCCESS", rawrecord.SearchText(record, "requestStatus"))

	_, err = provider.Open(ctx, "NOPE")
	require.ErrorIs(t, err, ErrUnknownDealer)
	_, err = OpenSession(ctx, provider, "NOPE")
	require.ErrorIs(t, err, ErrUnknownDealer)
	require.ErrorIs(t, err, acctportalerror.ErrUpstreamRequestFailed)
}

func TestNewUpstreamError(t *testing.T) {
	t.Parallel()
	cause := errors.New("timeout")
	err := NewUpstreamError(OperationGetHistory, cause)
	require.ErrorIs(t, err, acctportalerror.ErrUpstreamRequestFailed)
	require.ErrorIs(t, err, cause)
	malformed := acctportalerror.NewMalformedUpstreamData("bad", nil)
	require.Equal(t, error(malformed), NewUpstreamError(OperationGetHistory, malformed))
}

type fakeProvider struct {
	dealerCode string
	positions  rawrecord.Record
	history    rawrecord.Record
	summary    rawrecord.Record
	closed     int
}

func (p *fakeProvider) Open(_ context.Context, dealerCode string) (Session, error) {
	if dealerCode != p.dealerCode {
		return nil, ErrUnknownDealer
	}
	return p, nil
}

func (p *fakeProvider) GetPositions(context.Context, string) (rawrecord.Record, error) {
	return p.positions, nil
}

func (p *fakeProvider) GetHistory(context.Context, string, string, string) (rawrecord.Record, error) {
	return p.history, nil
}

func (p *fakeProvider) GetClientSummary(context.Context, string) (rawrecord.Record, error) {
	return p.summary, nil
}

func (p *fakeProvider) Close() error {
	p.closed++
	return nil
}
