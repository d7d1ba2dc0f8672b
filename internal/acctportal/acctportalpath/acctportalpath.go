// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalpath derives file paths from the acctportal config and
// data directories. All directory layout is defined here so callers don't
// duplicate path construction logic.
//
// The config directory contains:
//
//	config.yaml                       Config file
//
// The data directory contains:
//
//	recordings/<dealer>/              Recorded provider responses
package acctportalpath

import (
	"path/filepath"

	"github.com/bufdev/acctportal/internal/standard/xos"
)

// ConfigFileName is the well-known config file name within the config directory.
const ConfigFileName = "config.yaml"

// ConfigFilePath returns the path to the config file within the config directory.
func ConfigFilePath(configDirPath string) string {
	return filepath.Join(configDirPath, ConfigFileName)
}

// RecordingsDirPath returns the default directory for recorded provider responses.
func RecordingsDirPath(dataDirPath string) string {
	return filepath.Join(dataDirPath, "recordings")
}

// ResolveDirPath expands a leading ~ in a user-supplied directory path.
//
// If the path is empty, defaultDirPath is returned.
func ResolveDirPath(dirPath string, defaultDirPath string) (string, error) {
	if dirPath == "" {
		return defaultDirPath, nil
	}
	return xos.ExpandHome(dirPath)
}
