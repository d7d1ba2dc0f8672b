// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalprovider

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/bufdev/acctportal/internal/pkg/dataphile"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"golang.org/x/time/rate"
)

// DealerEndpoint is the configuration of a single dealer's Dataphile endpoint.
type DealerEndpoint struct {
	// Endpoint is the dealer's service endpoint.
	Endpoint dataphile.Endpoint
	// Limiter limits the dealer's outbound requests. May be nil.
	Limiter *rate.Limiter
}

// NewDataphileProvider returns a new Provider backed by the Dataphile service.
//
// Each Session creates its own client, releasing its connections on Close.
// The options are applied to every client.
func NewDataphileProvider(
	logger *slog.Logger,
	dealerCodeToEndpoint map[string]DealerEndpoint,
	options ...dataphile.ClientOption,
) Provider {
	return &dataphileProvider{
		logger:               logger,
		dealerCodeToEndpoint: maps.Clone(dealerCodeToEndpoint),
		options:              options,
	}
}

// *** PRIVATE ***

type dataphileProvider struct {
	logger               *slog.Logger
	dealerCodeToEndpoint map[string]DealerEndpoint
	options              []dataphile.ClientOption
}

func (p *dataphileProvider) Open(_ context.Context, dealerCode string) (Session, error) {
	dealerEndpoint, ok := p.dealerCodeToEndpoint[dealerCode]
	if !ok {
		return nil, fmt.Errorf("%w %q, must be one of: %v", ErrUnknownDealer, dealerCode, slices.Sorted(maps.Keys(p.dealerCodeToEndpoint)))
	}
	options := slices.Clone(p.options)
	if dealerEndpoint.Limiter != nil {
		options = append(options, dataphile.WithLimiter(dealerEndpoint.Limiter))
	}
	logger := p.logger.With("dealer", dealerCode)
	return &dataphileSession{
		client: dataphile.NewClient(logger, dealerEndpoint.Endpoint, options...),
	}, nil
}

type dataphileSession struct {
	client dataphile.Client
}

func (s *dataphileSession) GetPositions(ctx context.Context, accountNumber string) (rawrecord.Record, error) {
	return s.client.GetPositions(ctx, accountNumber)
}

func (s *dataphileSession) GetHistory(ctx context.Context, accountNumber string, firstNavKey string, lastNavKey string) (rawrecord.Record, error) {
	return s.client.GetHistory(ctx, accountNumber, firstNavKey, lastNavKey)
}

func (s *dataphileSession) GetClientSummary(ctx context.Context, clientID string) (rawrecord.Record, error) {
	return s.client.GetClientSummary(ctx, clientID)
}

func (s *dataphileSession) Close() error {
	return s.client.Close()
}
