// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned when a path escapes its base directory.
var ErrPathTraversal = fmt.Errorf("path traversal detected: path escapes base directory")

// WithinBase reports whether targetPath resolves inside basePath.
// The trailing separator check keeps /uploads-other from matching /uploads.
func WithinBase(basePath, targetPath string) bool {
	absBase, err := filepath.Abs(filepath.Clean(basePath))
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(filepath.Clean(targetPath))
	if err != nil {
		return false
	}
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(filepath.Separator))
}

// SafeJoinPath joins a URL-style relative path onto basePath and returns
// ErrPathTraversal if the result would leave the base directory.
func SafeJoinPath(basePath, rel string) (string, error) {
	rel = strings.TrimPrefix(filepath.FromSlash(rel), string(filepath.Separator))
	if rel == "" {
		return "", fmt.Errorf("empty path")
	}
	full := filepath.Join(basePath, rel)
	if !WithinBase(basePath, full) {
		return "", ErrPathTraversal
	}
	return full, nil
}
