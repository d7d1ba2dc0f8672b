// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	err := NewUpstreamRequestFailed("fetching history", nil, cause)
	require.ErrorIs(t, err, ErrUpstreamRequestFailed)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrMalformedUpstreamData)
	require.Equal(t, "UpstreamRequestFailed: fetching history: connection refused", err.Error())

	wrapped := fmt.Errorf("account 123: %w", NewMalformedUpstreamData("invalid recipient-type", "payload"))
	require.ErrorIs(t, wrapped, ErrMalformedUpstreamData)
	require.Equal(t, KindMalformedUpstreamData, KindOf(wrapped))
	require.Equal(t, KindUnknown, KindOf(cause))
}

func TestKindString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "CatalogLoadFailure", KindCatalogLoadFailure.String())
	require.Equal(t, "ValidationUnparsable", KindValidationUnparsable.String())
	require.Equal(t, "Kind(42)", Kind(42).String())
}
