// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bureau-foundation/lottiepack/lib/version"
)

// DefaultMaxBytes bounds a single fetched body.
const DefaultMaxBytes = 256 << 20

// HTTPOptions configures [NewHTTP].
type HTTPOptions struct {
	// Timeout bounds each request including the body read. Zero means
	// no limit beyond the caller's context.
	Timeout time.Duration

	// MaxBytes bounds the body size. Zero means DefaultMaxBytes.
	MaxBytes int64

	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// HTTP fetches http and https URLs.
type HTTP struct {
	client   *http.Client
	maxBytes int64
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// NewHTTP returns an HTTP fetcher.
func NewHTTP(options HTTPOptions) *HTTP {
	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTP{
		client:   &http.Client{Timeout: options.Timeout, Transport: options.Transport},
		maxBytes: maxBytes,
	}
}

// Fetch GETs url and returns the body and its declared content type.
func (h *HTTP) Fetch(ctx context.Context, url string) (*Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", "lottiepack/"+version.Short())

	response, err := h.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(response.Body, 4096))
		return nil, &StatusError{URL: url, Code: response.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", url, h.maxBytes)
	}
	return &Response{Data: data, ContentType: MediaType(response.Header.Get("Content-Type"))}, nil
}
