// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURLPrefix = "data:"

// IsDataURL reports whether s is a data URL.
func IsDataURL(s string) bool {
	return len(s) >= len(dataURLPrefix) && strings.EqualFold(s[:len(dataURLPrefix)], dataURLPrefix)
}

// EncodeDataURL returns a base64 data URL for data.
func EncodeDataURL(mediaType string, data []byte) string {
	return dataURLPrefix + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL decodes a base64 data URL, returning the declared media
// type and the payload. Percent-encoded (non-base64) data URLs are not
// used for binary assets and are rejected.
func DecodeDataURL(s string) (string, []byte, error) {
	if !IsDataURL(s) {
		return "", nil, fmt.Errorf("not a data url")
	}
	header, payload, found := strings.Cut(s[len(dataURLPrefix):], ",")
	if !found {
		return "", nil, fmt.Errorf("data url has no payload separator")
	}

	parameters := strings.Split(header, ";")
	mediaType := parameters[0]
	isBase64 := false
	for _, parameter := range parameters[1:] {
		if strings.EqualFold(parameter, "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		return "", nil, fmt.Errorf("data url is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, fmt.Errorf("decoding data url payload: %w", err)
		}
	}
	return mediaType, data, nil
}
