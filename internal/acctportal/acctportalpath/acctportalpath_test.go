// Copyright 2026 Peter Edge
//
// All rights reserved.

package acctportalpath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	t.Parallel()
	require.Equal(t, filepath.Join("cfg", "config.yaml"), ConfigFilePath("cfg"))
	require.Equal(t, filepath.Join("data", "recordings"), RecordingsDirPath("data"))
}

func TestResolveDirPath(t *testing.T) {
	t.Parallel()
	dirPath, err := ResolveDirPath("", "default")
	require.NoError(t, err)
	require.Equal(t, "default", dirPath)
	dirPath, err = ResolveDirPath("/tmp/recordings", "default")
	require.NoError(t, err)
	require.Equal(t, "/tmp/recordings", dirPath)
	_, err = ResolveDirPath("~other", "default")
	require.Error(t, err)
}
