// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalprovider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/bufdev/acctportal/internal/pkg/recordio"
)

// Recorded responses are stored as:
//
//	<dir>/<dealer>/positions_<account>.json
//	<dir>/<dealer>/history_<account>.json
//	<dir>/<dealer>/history_<account>_<firstNavKey>_<lastNavKey>.json
//	<dir>/<dealer>/client_summary_<clientID>.json

// NewReplayProvider returns a new Provider that serves responses recorded in dirPath.
//
// A dealer is known if its directory exists. A response that was not recorded
// is an error.
func NewReplayProvider(dirPath string) Provider {
	return &replayProvider{
		dirPath: dirPath,
	}
}

// NewRecordingProvider returns a new Provider that delegates to provider and
// records every successful response in dirPath, in the layout read by
// NewReplayProvider.
func NewRecordingProvider(provider Provider, dirPath string) Provider {
	return &recordingProvider{
		delegate: provider,
		dirPath:  dirPath,
	}
}

// *** PRIVATE ***

type replayProvider struct {
	dirPath string
}

func (p *replayProvider) Open(_ context.Context, dealerCode string) (Session, error) {
	dealerDirPath := filepath.Join(p.dirPath, sanitizeFileNamePart(dealerCode))
	fileInfo, err := os.Stat(dealerDirPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w %q, no recorded responses in %s", ErrUnknownDealer, dealerCode, dealerDirPath)
		}
		return nil, err
	}
	if !fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dealerDirPath)
	}
	return &replaySession{
		dealerDirPath: dealerDirPath,
	}, nil
}

type replaySession struct {
	dealerDirPath string
}

func (s *replaySession) GetPositions(_ context.Context, accountNumber string) (rawrecord.Record, error) {
	return s.read(positionsFileName(accountNumber))
}

func (s *replaySession) GetHistory(_ context.Context, accountNumber string, firstNavKey string, lastNavKey string) (rawrecord.Record, error) {
	return s.read(historyFileName(accountNumber, firstNavKey, lastNavKey))
}

func (s *replaySession) GetClientSummary(_ context.Context, clientID string) (rawrecord.Record, error) {
	return s.read(clientSummaryFileName(clientID))
}

func (s *replaySession) Close() error {
	return nil
}

func (s *replaySession) read(fileName string) (rawrecord.Record, error) {
	filePath := filepath.Join(s.dealerDirPath, fileName)
	record, err := recordio.ReadRecordJSON(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading recorded response %s: %w", filePath, err)
	}
	return record, nil
}

type recordingProvider struct {
	delegate Provider
	dirPath  string
}

func (p *recordingProvider) Open(ctx context.Context, dealerCode string) (Session, error) {
	session, err := p.delegate.Open(ctx, dealerCode)
	if err != nil {
		return nil, err
	}
	dealerDirPath := filepath.Join(p.dirPath, sanitizeFileNamePart(dealerCode))
	if err := os.MkdirAll(dealerDirPath, 0o755); err != nil {
		return nil, errors.Join(fmt.Errorf("creating recording directory: %w", err), session.Close())
	}
	return &recordingSession{
		delegate:      session,
		dealerDirPath: dealerDirPath,
	}, nil
}

type recordingSession struct {
	delegate      Session
	dealerDirPath string
}

func (s *recordingSession) GetPositions(ctx context.Context, accountNumber string) (rawrecord.Record, error) {
	record, err := s.delegate.GetPositions(ctx, accountNumber)
	return s.write(positionsFileName(accountNumber), record, err)
}

func (s *recordingSession) GetHistory(ctx context.Context, accountNumber string, firstNavKey string, lastNavKey string) (rawrecord.Record, error) {
	record, err := s.delegate.GetHistory(ctx, accountNumber, firstNavKey, lastNavKey)
	return s.write(historyFileName(accountNumber, firstNavKey, lastNavKey), record, err)
}

func (s *recordingSession) GetClientSummary(ctx context.Context, clientID string) (rawrecord.Record, error) {
	record, err := s.delegate.GetClientSummary(ctx, clientID)
	return s.write(clientSummaryFileName(clientID), record, err)
}

func (s *recordingSession) Close() error {
	return s.delegate.Close()
}

func (s *recordingSession) write(fileName string, record rawrecord.Record, err error) (rawrecord.Record, error) {
	if err != nil {
		return nil, err
	}
	filePath := filepath.Join(s.dealerDirPath, fileName)
	if err := recordio.WriteRecordJSON(filePath, record); err != nil {
		return nil, fmt.Errorf("recording response %s: %w", filePath, err)
	}
	return record, nil
}

func positionsFileName(accountNumber string) string {
	return "positions_" + sanitizeFileNamePart(accountNumber) + ".json"
}

func historyFileName(accountNumber string, firstNavKey string, lastNavKey string) string {
	if firstNavKey == "" && lastNavKey == "" {
		return "history_" + sanitizeFileNamePart(accountNumber) + ".json"
	}
	return "history_" + sanitizeFileNamePart(accountNumber) + "_" + sanitizeFileNamePart(firstNavKey) + "_" + sanitizeFileNamePart(lastNavKey) + ".json"
}

func clientSummaryFileName(clientID string) string {
	return "client_summary_" + sanitizeFileNamePart(clientID) + ".json"
}

// sanitizeFileNamePart replaces every character other than ASCII letters, digits, and '-' with '-'.
func sanitizeFileNamePart(s string) string {
	return strings.Map(
		func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
				return r
			default:
				return '-'
			}
		},
		s,
	)
}
