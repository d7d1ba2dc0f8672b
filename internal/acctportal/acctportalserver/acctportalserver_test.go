// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	response, body := get(t, server, "/", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.JSONEq(t, `"Success"`, body)
}

func TestAccountHoldings(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	response, body := get(t, server, "/api/AccountHoldings?AccountNum=111&DealerCode=MLI", validHeaders("fr-CA"))
	require.Equal(t, http.StatusOK, response.StatusCode, body)
	require.NotEmpty(t, response.Header.Get(HeaderRequestID))
	var document struct {
		AccountHoldings struct {
			AccountSummary struct {
				MarketValue              json.Number `json:"marketValue"`
				RecipientTypeDescription string      `json:"recipientTypeDescription"`
			} `json:"accountSummary"`
			AssetClassGroup []struct {
				AssetClassDescription string `json:"assetClassDescription"`
			} `json:"assetClassGroup"`
		} `json:"accountHoldings"`
	}
	decodeJSON(t, body, &document)
	require.Equal(t, "1000.5", document.AccountHoldings.AccountSummary.MarketValue.String())
	require.Equal(t, "Particulier", document.AccountHoldings.AccountSummary.RecipientTypeDescription)
	require.Len(t, document.AccountHoldings.AssetClassGroup, 2)
	require.Equal(t, "Actions", document.AccountHoldings.AssetClassGroup[0].AssetClassDescription)
}

func TestAccountActivity(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	response, body := get(t, server, "/api/AccountActivity?AccountNum=111&DealerCode=MLI&firstNavKey=3&lastNavKey=4", validHeaders("en"))
	require.Equal(t, http.StatusOK, response.StatusCode, body)
	var document struct {
		AccountActivity struct {
			AccountTransaction []struct {
				TransactionStatus string `json:"transactionStatus"`
			} `json:"accountTransaction"`
			HistoryNavigation struct {
				FirstNavKey json.Number `json:"firstNavKey"`
			} `json:"historyNavigation"`
		} `json:"accountActivity"`
	}
	decodeJSON(t, body, &document)
	require.Len(t, document.AccountActivity.AccountTransaction, 2)
	require.Equal(t, "Pending", document.AccountActivity.AccountTransaction[0].TransactionStatus)
	require.Equal(t, "3", document.AccountActivity.HistoryNavigation.FirstNavKey.String())
}

func TestRecentActivity(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	response, body := get(t, server, "/api/RecentActivity?AccountNums=111:MLI,222:MLI", validHeaders("en"))
	require.Equal(t, http.StatusOK, response.StatusCode, body)
	var document struct {
		RecentActivity []struct {
			AcctNumber string `json:"acctNumber"`
		} `json:"recentActivity"`
	}
	decodeJSON(t, body, &document)
	require.Len(t, document.RecentActivity, 2)
	require.Equal(t, "111", document.RecentActivity[0].AcctNumber)
	require.Equal(t, "222", document.RecentActivity[1].AcctNumber)

	response, body = get(t, server, "/api/RecentActivity?AccountNums=111:MLI,999:MLI", validHeaders("en"))
	require.Equal(t, http.StatusBadGateway, response.StatusCode, body)
	require.NotContains(t, body, "recentActivity")
}

func TestErrors(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	for _, test := range []struct {
		desc    string
		path    string
		headers map[string]string
		status  int
	}{
		{
			desc:   "missing api id",
			path:   "/api/AccountHoldings?AccountNum=111&DealerCode=MLI",
			status: http.StatusBadRequest,
		},
		{
			desc:    "bad secret",
			path:    "/api/AccountHoldings?AccountNum=111&DealerCode=MLI",
			headers: map[string]string{HeaderAPIID: "web", HeaderAPISecret: "wrong", HeaderAcceptLanguage: "en"},
			status:  http.StatusUnauthorized,
		},
		{
			desc:    "unknown client",
			path:    "/api/AccountHoldings?AccountNum=111&DealerCode=MLI",
			headers: map[string]string{HeaderAPIID: "other", HeaderAPISecret: "s3cret", HeaderAcceptLanguage: "en"},
			status:  http.StatusUnauthorized,
		},
		{
			desc:    "unsupported language",
			path:    "/api/AccountHoldings?AccountNum=111&DealerCode=MLI",
			headers: validHeaders("de-DE"),
			status:  http.StatusBadRequest,
		},
		{
			desc:    "missing query parameter",
			path:    "/api/AccountHoldings?AccountNum=111",
			headers: validHeaders("en"),
			status:  http.StatusBadRequest,
		},
		{
			desc:    "unknown dealer",
			path:    "/api/AccountHoldings?AccountNum=111&DealerCode=NOPE",
			headers: validHeaders("en"),
			status:  http.StatusBadRequest,
		},
		{
			desc:    "malformed account list",
			path:    "/api/RecentActivity?AccountNums=111",
			headers: validHeaders("en"),
			status:  http.StatusBadRequest,
		},
		{
			desc:    "unknown dealers only",
			path:    "/api/RecentActivity?AccountNums=111:NOPE,222:OTHER",
			headers: validHeaders("en"),
			status:  http.StatusBadRequest,
		},
		{
			desc:    "unknown dealer and upstream failure",
			path:    "/api/RecentActivity?AccountNums=111:NOPE,999:MLI",
			headers: validHeaders("en"),
			status:  http.StatusBadGateway,
		},
		{
			desc:    "upstream failure and unknown dealer",
			path:    "/api/RecentActivity?AccountNums=999:MLI,111:NOPE",
			headers: validHeaders("en"),
			status:  http.StatusBadGateway,
		},
		{
			desc:    "upstream failure",
			path:    "/api/AccountHoldings?AccountNum=999&DealerCode=MLI",
			headers: validHeaders("en"),
			status:  http.StatusBadGateway,
		},
	} {
		response, body := get(t, server, test.path, test.headers)
		require.Equal(t, test.status, response.StatusCode, test.desc)
		var errorResponse ErrorResponse
		decodeJSON(t, body, &errorResponse)
		require.Len(t, errorResponse.Errors, 1, test.desc)
		require.Equal(t, http.StatusText(test.status), errorResponse.Errors[0].Title, test.desc)
		require.NotEmpty(t, errorResponse.Errors[0].Detail, test.desc)
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()
	server := newTestServer(t)
	_, _ = get(t, server, "/api/AccountHoldings?AccountNum=111&DealerCode=MLI", validHeaders("en"))
	_, _ = get(t, server, "/api/AccountHoldings?AccountNum=999&DealerCode=MLI", validHeaders("en"))
	response, body := get(t, server, "/metrics", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Contains(t, body, `acctportal_requests_total{code="200",endpoint="AccountHoldings"} 1`)
	require.Contains(t, body, `acctportal_upstream_failures_total{endpoint="AccountHoldings",kind="UpstreamRequestFailed"} 1`)
}

func TestServe(t *testing.T) {
	t.Parallel()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errC := make(chan error, 1)
	go func() {
		errC <- Serve(ctx, slog.New(slog.DiscardHandler), listener, newTestHandler(t))
	}()
	response, err := http.Get("http://" + listener.Addr().String() + "/")
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())
	require.Equal(t, http.StatusOK, response.StatusCode)
	cancel()
	select {
	case err := <-errC:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(newTestHandler(t))
	t.Cleanup(server.Close)
	return server
}

func newTestHandler(t *testing.T) http.Handler {
	catalog, err := acctportalcatalog.LoadDefault()
	require.NoError(t, err)
	return NewHandler(
		slog.New(slog.DiscardHandler),
		acctportalformat.NewFormatter(catalog, time.UTC),
		newFakeProvider(),
		map[string]string{"web": "s3cret"},
		WithNow(func() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) }),
	)
}

func validHeaders(acceptLanguage string) map[string]string {
	return map[string]string{
		HeaderAPIID:          "web",
		HeaderAPISecret:      "s3cret",
		HeaderAcceptLanguage: acceptLanguage,
	}
}

func get(t *testing.T, server *httptest.Server, path string, headers map[string]string) (*http.Response, string) {
	request, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	response, err := server.Client().Do(request)
	require.NoError(t, err)
	data, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	require.NoError(t, response.Body.Close())
	return response, string(data)
}

func decodeJSON(t *testing.T, body string, v any) {
	require.NoError(t, json.Unmarshal([]byte(body), v), body)
}

// fakeProvider serves fixed responses for accounts 111 and 222 of dealer MLI.
// Every other account fails.
type fakeProvider struct{}

func newFakeProvider() acctportalprovider.Provider {
	return fakeProvider{}
}

func (fakeProvider) Open(_ context.Context, dealerCode string) (acctportalprovider.Session, error) {
	if dealerCode != "MLI" {
		return nil, acctportalprovider.ErrUnknownDealer
	}
	return fakeSession{}, nil
}

type fakeSession struct{}

func (fakeSession) GetPositions(_ context.Context, accountNumber string) (rawrecord.Record, error) {
	if accountNumber != "111" {
		return nil, errors.New("no such account")
	}
	response := newSuccessResponse(accountNumber)
	response.Add("accountPositionRow",
		rawrecord.Nested(rawrecord.FromTexts(map[string]string{"class": "FI", "market-value": "500.50"})),
		rawrecord.Nested(rawrecord.FromTexts(map[string]string{"class": "EQ", "market-value": "500.00"})),
	)
	return response, nil
}

func (fakeSession) GetHistory(_ context.Context, accountNumber string, _ string, _ string) (rawrecord.Record, error) {
	if accountNumber != "111" && accountNumber != "222" {
		return nil, errors.New("no such account")
	}
	response := newSuccessResponse(accountNumber)
	response.Add("accountHistoryRow",
		rawrecord.Nested(rawrecord.FromTexts(map[string]string{"activity": "BUY", "settlement-date": "24/03/18"})),
		rawrecord.Nested(rawrecord.FromTexts(map[string]string{"activity": "SELL", "settlement-date": "23/01/01"})),
	)
	return response, nil
}

func (fakeSession) GetClientSummary(context.Context, string) (rawrecord.Record, error) {
	return rawrecord.FromTexts(map[string]string{"requestStatus": "SUCCESS", "recipient-type": "IND"}), nil
}

func (fakeSession) Close() error {
	return nil
}

func newSuccessResponse(accountNumber string) rawrecord.Record {
	response := rawrecord.FromTexts(map[string]string{
		"requestStatus": "SUCCESS",
		"firstNavKey":   "3",
		"lastNavKey":    "4",
	})
	response.Add("accountSummaryRow", rawrecord.Nested(rawrecord.FromTexts(map[string]string{
		"acct-number":  accountNumber,
		"client-id":    "C1",
		"market-value": "1000.50U",
	})))
	return response
}
