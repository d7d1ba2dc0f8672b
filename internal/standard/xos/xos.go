// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package xos provides extensions to the standard os package.
package xos

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading ~ or ~/ in a path to the user's home directory.
//
// Paths of the form ~user are not supported and return an error.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	rest := path[1:]
	if rest != "" && !strings.HasPrefix(rest, "/") && !strings.HasPrefix(rest, string(filepath.Separator)) {
		return "", fmt.Errorf("cannot expand %q: only ~ and ~/ are supported", path)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(homeDir, rest), nil
}

// WriteFileAtomic writes data to a temporary file in the directory of
// filePath and renames it over filePath.
//
// Readers of filePath see either the old contents or the new contents, never
// a partial write.
func WriteFileAtomic(filePath string, data []byte, perm fs.FileMode) (retErr error) {
	file, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return err
	}
	tempFilePath := file.Name()
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, removeIfExists(tempFilePath))
		}
	}()
	if _, err := file.Write(data); err != nil {
		return errors.Join(err, file.Close())
	}
	if err := file.Chmod(perm); err != nil {
		return errors.Join(err, file.Close())
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tempFilePath, filePath)
}

// *** PRIVATE ***

func removeIfExists(filePath string) error {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
