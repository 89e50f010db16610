// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateID checks a caller-assigned document id. Ids become archive
// file names, so they must be non-empty, free of path separators and
// must not start with a dot.
func ValidateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty id", ErrInvalidIdentifier)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("%w: id %q contains a path separator", ErrInvalidIdentifier, id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: id %q starts with a dot", ErrInvalidIdentifier, id)
	case strings.ContainsAny(id, "\x00\n\r"):
		return fmt.Errorf("%w: id %q contains a control character", ErrInvalidIdentifier, id)
	}
	return nil
}

// ValidateURL checks a remote source location: an absolute http or https
// URL with a host, or a data URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: empty url", ErrMissingSource)
	}
	if IsDataURL(raw) {
		if _, _, err := DecodeDataURL(raw); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingSource, err)
		}
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: malformed url %q: %v", ErrMissingSource, raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: url %q must use http or https", ErrMissingSource, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url %q has no host", ErrMissingSource, raw)
	}
	return nil
}

// validateIDs checks every id in a reference list.
func validateIDs(field string, ids []string) error {
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

// cloneStrings returns an independent copy of ids.
func cloneStrings(ids []string) []string {
	if ids == nil {
		return nil
	}
	result := make([]string, len(ids))
	copy(result, ids)
	return result
}

// cloneBytes returns an independent copy of data.
func cloneBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	result := make([]byte, len(data))
	copy(result, data)
	return result
}

// appendUnique appends id unless already present.
func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
