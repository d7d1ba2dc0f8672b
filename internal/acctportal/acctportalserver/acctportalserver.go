// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalserver provides the acctportal HTTP API.
//
// Routes:
//
//	GET /                                                     Health check
//	GET /api/AccountHoldings?AccountNum=&DealerCode=          Holdings document
//	GET /api/AccountActivity?AccountNum=&DealerCode=          Activity document
//	    [&firstNavKey=&lastNavKey=]
//	GET /api/RecentActivity?AccountNums=acct:dealer,...       Recent activity document
//	GET /metrics                                              Prometheus metrics
//
// Every /api route requires the x-api-id, x-api-secret, and accept-language headers.
package acctportalserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bufdev/acctportal/internal/acctportal/acctportalactivity"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalerror"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalholdings"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalrecent"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// HeaderAPIID is the header carrying the API client ID.
	HeaderAPIID = "x-api-id"
	// HeaderAPISecret is the header carrying the API client secret.
	HeaderAPISecret = "x-api-secret"
	// HeaderAcceptLanguage is the header selecting the response language.
	HeaderAcceptLanguage = "accept-language"
	// HeaderRequestID is the response header carrying the request ID.
	HeaderRequestID = "x-request-id"

	shutdownTimeout = 10 * time.Second
)

// HandlerOption is an option for NewHandler.
type HandlerOption func(*handler)

// WithNow returns a new HandlerOption that sets the clock used for
// transaction statuses and the recent activity window.
//
// The default is time.Now.
func WithNow(now func() time.Time) HandlerOption {
	return func(handler *handler) {
		handler.now = now
	}
}

// WithRecentActivityWindow returns a new HandlerOption that sets the recent activity window.
//
// The default is acctportalrecent.DefaultWindow().
func WithRecentActivityWindow(window acctportalrecent.Window) HandlerOption {
	return func(handler *handler) {
		handler.window = window
	}
}

// NewHandler returns a new http.Handler serving the acctportal API.
//
// apiClientSecrets maps API client IDs to their secrets.
func NewHandler(
	logger *slog.Logger,
	formatter *acctportalformat.Formatter,
	provider acctportalprovider.Provider,
	apiClientSecrets map[string]string,
	options ...HandlerOption,
) http.Handler {
	registry := prometheus.NewRegistry()
	handler := &handler{
		logger:           logger,
		provider:         provider,
		holdings:         acctportalholdings.NewAssembler(formatter),
		activity:         acctportalactivity.NewAssembler(formatter),
		recent:           acctportalrecent.NewAggregator(logger, formatter, provider),
		apiClientSecrets: maps.Clone(apiClientSecrets),
		window:           acctportalrecent.DefaultWindow(),
		now:              time.Now,
		metrics:          newMetrics(registry),
	}
	for _, option := range options {
		option(handler)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handler.handleRoot)
	mux.Handle("GET /api/AccountHoldings", handler.instrument("AccountHoldings", handler.handleAccountHoldings))
	mux.Handle("GET /api/AccountActivity", handler.instrument("AccountActivity", handler.handleAccountActivity))
	mux.Handle("GET /api/RecentActivity", handler.instrument("RecentActivity", handler.handleRecentActivity))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	handler.mux = mux
	return handler
}

// Serve serves the handler on the listener until ctx is cancelled, then
// shuts down gracefully.
func Serve(ctx context.Context, logger *slog.Logger, listener net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	errC := make(chan error, 1)
	go func() {
		errC <- server.Serve(listener)
	}()
	logger.Info("server started", "address", listener.Addr().String())
	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}
	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errC; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ErrorResponse is the body of an error response.
type ErrorResponse struct {
	Errors []*ErrorObject `json:"errors"`
}

// ErrorObject describes a single error.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// *** PRIVATE ***

type handler struct {
	logger           *slog.Logger
	provider         acctportalprovider.Provider
	holdings         *acctportalholdings.Assembler
	activity         *acctportalactivity.Assembler
	recent           *acctportalrecent.Aggregator
	apiClientSecrets map[string]string
	window           acctportalrecent.Window
	now              func() time.Time
	metrics          *metrics
	mux              *http.ServeMux
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, "Success")
}

func (h *handler) handleAccountHoldings(r *http.Request, language acctportalcatalog.Language) (any, error) {
	query, err := requireQuery(r, "AccountNum", "DealerCode")
	if err != nil {
		return nil, err
	}
	return h.holdings.Get(r.Context(), h.provider, query["DealerCode"], query["AccountNum"], language)
}

func (h *handler) handleAccountActivity(r *http.Request, language acctportalcatalog.Language) (any, error) {
	query, err := requireQuery(r, "AccountNum", "DealerCode")
	if err != nil {
		return nil, err
	}
	return h.activity.Get(
		r.Context(),
		h.provider,
		query["DealerCode"],
		query["AccountNum"],
		r.URL.Query().Get("firstNavKey"),
		r.URL.Query().Get("lastNavKey"),
		language,
		h.now(),
	)
}

func (h *handler) handleRecentActivity(r *http.Request, language acctportalcatalog.Language) (any, error) {
	query, err := requireQuery(r, "AccountNums")
	if err != nil {
		return nil, err
	}
	accountRefs, err := acctportalrecent.ParseAccountRefs(query["AccountNums"])
	if err != nil {
		return nil, err
	}
	return h.recent.Get(r.Context(), accountRefs, language, h.window, h.now())
}

// instrument validates the request headers, calls f, writes its result or
// error, and records the request.
func (h *handler) instrument(
	endpoint string,
	f func(*http.Request, acctportalcatalog.Language) (any, error),
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set(HeaderRequestID, requestID)
		logger := h.logger.With("request_id", requestID, "endpoint", endpoint)
		status := http.StatusOK
		language, err := h.validateHeaders(r)
		var result any
		if err == nil {
			result, err = f(r, language)
		}
		if err != nil {
			status = statusForError(err)
			if kind := acctportalerror.KindOf(err); kind == acctportalerror.KindUpstreamRequestFailed || kind == acctportalerror.KindMalformedUpstreamData {
				h.metrics.upstreamFailures.WithLabelValues(endpoint, kind.String()).Inc()
			}
			logger.Warn("request failed", "status", status, "error", err)
			h.writeError(w, status, err)
		} else {
			h.writeJSON(w, status, result)
		}
		duration := time.Since(start)
		h.metrics.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
		h.metrics.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
		logger.Info("request", "status", status, "duration", duration)
	})
}

func (h *handler) validateHeaders(r *http.Request) (acctportalcatalog.Language, error) {
	apiID := r.Header.Get(HeaderAPIID)
	if apiID == "" {
		return "", newRequestError(http.StatusBadRequest, fmt.Sprintf("missing required header %q", HeaderAPIID))
	}
	apiSecret := r.Header.Get(HeaderAPISecret)
	if apiSecret == "" {
		return "", newRequestError(http.StatusBadRequest, fmt.Sprintf("missing required header %q", HeaderAPISecret))
	}
	expectedSecret, ok := h.apiClientSecrets[apiID]
	if !ok || subtle.ConstantTimeCompare([]byte(apiSecret), []byte(expectedSecret)) != 1 {
		return "", newRequestError(http.StatusUnauthorized, fmt.Sprintf("%s or %s invalid", HeaderAPIID, HeaderAPISecret))
	}
	acceptLanguage := r.Header.Get(HeaderAcceptLanguage)
	if acceptLanguage == "" {
		return "", newRequestError(http.StatusBadRequest, fmt.Sprintf("missing required header %q", HeaderAcceptLanguage))
	}
	language, err := acctportalcatalog.ParseLanguage(acceptLanguage)
	if err != nil {
		return "", newRequestError(http.StatusBadRequest, fmt.Sprintf("invalid header %q: %v", HeaderAcceptLanguage, err))
	}
	return language, nil
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		h.logger.Error("marshaling response", "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(newErrorResponse(status, err))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, newErrorResponse(status, err))
}

type requestError struct {
	status  int
	message string
}

func newRequestError(status int, message string) *requestError {
	return &requestError{
		status:  status,
		message: message,
	}
}

func (e *requestError) Error() string {
	return e.message
}

func requireQuery(r *http.Request, keys ...string) (map[string]string, error) {
	values := r.URL.Query()
	query := make(map[string]string, len(keys))
	for _, key := range keys {
		value := values.Get(key)
		if value == "" {
			return nil, newRequestError(http.StatusBadRequest, fmt.Sprintf("missing required query parameter %q", key))
		}
		query[key] = value
	}
	return query, nil
}

func statusForError(err error) int {
	var requestErr *requestError
	if errors.As(err, &requestErr) {
		return requestErr.status
	}
	if isUnknownDealer(err) {
		return http.StatusBadRequest
	}
	switch acctportalerror.KindOf(err) {
	case acctportalerror.KindValidationUnparsable:
		return http.StatusBadRequest
	case acctportalerror.KindUpstreamRequestFailed, acctportalerror.KindMalformedUpstreamData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isUnknownDealer returns true if err is caused by unknown dealer codes only.
//
// An aggregate error joins one failure per account. It is only a client
// error if every joined failure is an unknown dealer.
func isUnknownDealer(err error) bool {
	var typedErr *acctportalerror.Error
	if !errors.As(err, &typedErr) {
		return errors.Is(err, acctportalprovider.ErrUnknownDealer)
	}
	if _, nested := typedErr.Cause.(*acctportalerror.Error); !nested {
		if joined, ok := typedErr.Cause.(interface{ Unwrap() []error }); ok {
			causes := joined.Unwrap()
			for _, cause := range causes {
				if !errors.Is(cause, acctportalprovider.ErrUnknownDealer) {
					return false
				}
			}
			return len(causes) > 0
		}
	}
	return errors.Is(err, acctportalprovider.ErrUnknownDealer)
}

func newErrorResponse(status int, err error) *ErrorResponse {
	return &ErrorResponse{
		Errors: []*ErrorObject{
			{
				Status: strconv.Itoa(status),
				Title:  http.StatusText(status),
				Detail: err.Error(),
			},
		},
	}
}

type metrics struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamFailures *prometheus.CounterVec
}

func newMetrics(registry *prometheus.Registry) *metrics {
	return &metrics{
		requests: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "acctportal_requests_total",
			Help: "Total number of API requests",
		}, []string{"endpoint", "code"}),
		requestDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acctportal_request_duration_seconds",
			Help:    "Time taken to serve an API request",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		upstreamFailures: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "acctportal_upstream_failures_total",
			Help: "Total number of API requests that failed because of the account-data provider",
		}, []string{"endpoint", "kind"}),
	}
}
