// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package dataphile provides an API client for the Dataphile account management SOAP service.
//
// Each dealer has its own service endpoint with HTTP basic credentials. The
// client exposes three operations:
//  1. GetPositions: The account summary and position rows for an account.
//  2. GetHistory: The account summary and a page of history rows for an account.
//  3. GetClientSummary: The client summary, including the recipient type.
//
// Requests are SOAP 1.1 envelopes sent with HTTP POST. Responses are decoded
// generically into rawrecord.Record trees rather than into fixed structures,
// since the service's field set varies between releases.
//
// Transient failures (HTTP 429 and 502-504, and transport errors) are retried
// with exponential backoff. Outbound requests may be rate limited.
package dataphile

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bufdev/acctportal/internal/pkg/backoff"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"golang.org/x/time/rate"
)

const (
	// soapEnvelopeNamespace is the SOAP 1.1 envelope namespace.
	soapEnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	// accountNamespace is the namespace of the account service operations.
	accountNamespace = "urn:dataphile:account"
	// contentType is the SOAP 1.1 request content type.
	contentType = "text/xml; charset=utf-8"
	// maxResponseBytes bounds the size of a response body.
	maxResponseBytes = 32 << 20
	// defaultTimeout is the default per-attempt HTTP timeout.
	defaultTimeout = 30 * time.Second
)

// Endpoint is a dealer's service endpoint.
type Endpoint struct {
	// URL is the SOAP service URL.
	URL string
	// Username is the HTTP basic username.
	Username string
	// Password is the HTTP basic password.
	Password string
}

// Client is the interface for calling the Dataphile account service.
//
// A Client holds idle connections until Close is called.
type Client interface {
	// GetPositions returns the positions response for the account.
	GetPositions(ctx context.Context, accountNumber string) (rawrecord.Record, error)
	// GetHistory returns the history response for the account.
	//
	// Empty navigation keys select the most recent page.
	GetHistory(ctx context.Context, accountNumber string, firstNavKey string, lastNavKey string) (rawrecord.Record, error)
	// GetClientSummary returns the client summary response for the client.
	GetClientSummary(ctx context.Context, clientID string) (rawrecord.Record, error)
	// Close releases idle connections.
	Close() error
}

// ClientOption is an option for a new Client.
type ClientOption func(*client)

// WithLimiter returns a new ClientOption that waits on the limiter before every request attempt.
//
// The limiter may be shared between Clients.
func WithLimiter(limiter *rate.Limiter) ClientOption {
	return func(client *client) {
		client.limiter = limiter
	}
}

// WithBackoffPolicy returns a new ClientOption that sets the retry policy.
//
// The default is backoff.DefaultPolicy.
func WithBackoffPolicy(policy backoff.Policy) ClientOption {
	return func(client *client) {
		client.policy = policy
	}
}

// WithTimeout returns a new ClientOption that sets the per-attempt HTTP timeout.
//
// The default is 30 seconds.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *client) {
		client.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Dataphile API client for the endpoint. The logger is required.
func NewClient(logger *slog.Logger, endpoint Endpoint, options ...ClientOption) Client {
	client := &client{
		logger:   logger,
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   defaultTimeout,
		},
		policy: backoff.DefaultPolicy(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// FaultError is returned when the service responds with a SOAP fault.
type FaultError struct {
	// Code is the fault code.
	Code string
	// Message is the fault string.
	Message string
}

// Error implements error.
func (e *FaultError) Error() string {
	return fmt.Sprintf("soap fault %s: %s", e.Code, e.Message)
}

// *** PRIVATE ***

type client struct {
	logger     *slog.Logger
	endpoint   Endpoint
	httpClient *http.Client
	limiter    *rate.Limiter
	policy     backoff.Policy
}

// retryableStatusCodes are HTTP status codes that indicate a transient failure.
var retryableStatusCodes = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// param is a single named operation parameter.
type param struct {
	name  string
	value string
}

func (c *client) GetPositions(ctx context.Context, accountNumber string) (rawrecord.Record, error) {
	if accountNumber == "" {
		return nil, errors.New("account number is required")
	}
	return c.call(ctx, "GetPositions", param{"account-number", accountNumber})
}

func (c *client) GetHistory(ctx context.Context, accountNumber string, firstNavKey string, lastNavKey string) (rawrecord.Record, error) {
	if accountNumber == "" {
		return nil, errors.New("account number is required")
	}
	return c.call(
		ctx,
		"GetHistory",
		param{"account-number", accountNumber},
		param{"firstNavKey", firstNavKey},
		param{"lastNavKey", lastNavKey},
	)
}

func (c *client) GetClientSummary(ctx context.Context, clientID string) (rawrecord.Record, error) {
	if clientID == "" {
		return nil, errors.New("client ID is required")
	}
	return c.call(ctx, "GetClientSummary", param{"client-id", clientID})
}

func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// call sends the operation and decodes the response body, retrying transient failures.
func (c *client) call(ctx context.Context, operation string, params ...param) (rawrecord.Record, error) {
	requestBody, err := marshalEnvelope(operation, params)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", operation, err)
	}
	start := time.Now()
	record, err := backoff.Retry(ctx, c.policy,
		func(ctx context.Context, attempt int) (rawrecord.Record, bool, error) {
			if attempt > 0 {
				c.logger.Info("retrying dataphile request", "operation", operation, "attempt", attempt+1)
			}
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return nil, false, err
				}
			}
			return c.post(ctx, operation, requestBody)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", operation, err)
	}
	c.logger.Debug("dataphile request complete", "operation", operation, "duration", time.Since(start))
	return record, nil
}

// post performs a single request attempt.
//
// Returns whether a failure is retryable.
func (c *client) post(ctx context.Context, operation string, requestBody []byte) (rawrecord.Record, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("SOAPAction", accountNamespace+"/"+operation)
	if c.endpoint.Username != "" {
		req.SetBasicAuth(c.endpoint.Username, c.endpoint.Password)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors are transient unless the context is done.
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, err
	}
	if retryableStatusCodes[resp.StatusCode] {
		c.logger.Warn("transient dataphile error, will retry", "operation", operation, "status", resp.StatusCode)
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	// SOAP faults are returned with status 500, so decode before checking the status.
	record, decodeErr := rawrecord.DecodeXML(bytes.NewReader(body))
	if decodeErr == nil {
		if faultErr := faultFromRecord(record); faultErr != nil {
			return nil, false, faultErr
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 512))
	}
	if decodeErr != nil {
		return nil, false, fmt.Errorf("parsing %s response: %w", operation, decodeErr)
	}
	return record, false, nil
}

// envelope is the SOAP 1.1 request envelope.
type envelope struct {
	XMLName   xml.Name `xml:"soapenv:Envelope"`
	SoapEnvNS string   `xml:"xmlns:soapenv,attr"`
	AccountNS string   `xml:"xmlns:acct,attr"`
	Header    struct{} `xml:"soapenv:Header"`
	Body      envelopeBody
}

type envelopeBody struct {
	XMLName   xml.Name `xml:"soapenv:Body"`
	Operation envelopeOperation
}

type envelopeOperation struct {
	XMLName xml.Name
	Params  []envelopeParam
}

type envelopeParam struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func marshalEnvelope(operation string, params []param) ([]byte, error) {
	envelopeParams := make([]envelopeParam, 0, len(params))
	for _, param := range params {
		envelopeParams = append(envelopeParams, envelopeParam{
			XMLName: xml.Name{Local: "acct:" + param.name},
			Value:   param.value,
		})
	}
	data, err := xml.Marshal(
		envelope{
			SoapEnvNS: soapEnvelopeNamespace,
			AccountNS: accountNamespace,
			Body: envelopeBody{
				Operation: envelopeOperation{
					XMLName: xml.Name{Local: "acct:" + operation},
					Params:  envelopeParams,
				},
			},
		},
	)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

// faultFromRecord returns a FaultError if the decoded response is a SOAP fault.
func faultFromRecord(record rawrecord.Record) *FaultError {
	faults := rawrecord.SearchRecords(record, "Fault")
	if len(faults) == 0 {
		return nil
	}
	return &FaultError{
		Code:    faults[0].Text("faultcode"),
		Message: faults[0].Text("faultstring"),
	}
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
