// Copyright 2026 Peter Edge
//
// All rights reserved.

package xos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	t.Parallel()
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	for _, test := range []struct {
		path string
		want string
	}{
		{path: "", want: ""},
		{path: "/tmp/x", want: "/tmp/x"},
		{path: "relative/~", want: "relative/~"},
		{path: "~", want: homeDir},
		{path: "~/recordings", want: filepath.Join(homeDir, "recordings")},
	} {
		got, err := ExpandHome(test.path)
		require.NoError(t, err, test.path)
		require.Equal(t, test.want, got, test.path)
	}
	_, err = ExpandHome("~other/recordings")
	require.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	filePath := filepath.Join(dirPath, "out.json")
	require.NoError(t, WriteFileAtomic(filePath, []byte("one"), 0o600))
	require.NoError(t, WriteFileAtomic(filePath, []byte("two"), 0o600))
	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
	fileInfo, err := os.Stat(filePath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())
	dirEntries, err := os.ReadDir(dirPath)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)

	require.Error(t, WriteFileAtomic(filepath.Join(dirPath, "missing", "out.json"), []byte("x"), 0o600))
}
