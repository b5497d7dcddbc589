// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import (
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

// Format is an import/export file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat parses a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", oops.Code("IMPORT_UNSUPPORTED_FORMAT").
		With("format", s).
		Errorf("unsupported format %q: only json and csv are supported", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", oops.Code("IMPORT_UNSUPPORTED_FORMAT").
			With("path", path).
			Errorf("cannot tell the format of %q: use a .json or .csv file", path)
	}
	return ParseFormat(ext)
}
