// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fetch turns source URLs into bytes for the builder and
// reader. [Fetcher] is the only thing lib/dotlottie depends on; [HTTP]
// is the network implementation the CLI uses and [Static] serves fixed
// responses to tests and offline builds.
//
// Fetchers do not retry and impose no timeout of their own beyond what
// the caller configures; the context passed to Fetch bounds each call.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
)

// Response is a fetched body with its declared media type.
type Response struct {
	Data []byte

	// ContentType is the declared type without parameters, lowercased,
	// or "" when the source declared none.
	ContentType string
}

// Fetcher retrieves the content at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// Func adapts a function to [Fetcher].
type Func func(ctx context.Context, url string) (*Response, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// ErrNotFound is returned by [Static] for unknown URLs.
var ErrNotFound = errors.New("fetch: not found")

// Static serves a fixed set of responses keyed by URL.
type Static map[string]Response

// Fetch returns a copy of the response registered for url.
func (s Static) Fetch(ctx context.Context, url string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	response, ok := s[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	return &Response{
		Data:        append([]byte(nil), response.Data...),
		ContentType: MediaType(response.ContentType),
	}, nil
}

// MediaType normalizes a Content-Type header value to its lowercased
// media type, dropping parameters. Unparseable values fall back to the
// text before the first ';'.
func MediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
