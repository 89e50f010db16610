// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

// Embedded is one payload to embed in an [Animation].
type Embedded struct {
	// ID is the Lottie asset id (or font name).
	ID string

	// MediaType is the declared data URL type, for example "image/png",
	// "audio/mpeg" or "font/ttf". Fonts are recognized by the "font/"
	// prefix.
	MediaType string

	Data []byte
}

// DataURL encodes data the way Lottie exporters do.
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Animation returns a Lottie document named name with the payloads
// embedded. The document also carries a precomposition asset and an
// image layer so rewriters see the shapes they must leave alone.
func Animation(t testing.TB, name string, embedded ...Embedded) []byte {
	t.Helper()

	assets := []any{
		map[string]any{"id": "comp_0", "nm": "precomp", "fr": 30, "layers": []any{}},
	}
	var fonts []any
	var layers []any
	for i, payload := range embedded {
		if len(payload.MediaType) > 5 && payload.MediaType[:5] == "font/" {
			fonts = append(fonts, map[string]any{
				"fName":   payload.ID,
				"fFamily": payload.ID,
				"fStyle":  "Regular",
				"ascent":  75,
				"origin":  3,
				"fPath":   DataURL(payload.MediaType, payload.Data),
			})
			continue
		}
		assets = append(assets, map[string]any{
			"id": payload.ID,
			"w":  16,
			"h":  16,
			"u":  "",
			"p":  DataURL(payload.MediaType, payload.Data),
			"e":  1,
		})
		layers = append(layers, map[string]any{
			"ddd":   0,
			"ind":   i + 1,
			"ty":    2,
			"nm":    payload.ID,
			"refId": payload.ID,
			"ip":    0,
			"op":    60,
			"st":    0,
		})
	}

	document := map[string]any{
		"v":      "5.7.4",
		"nm":     name,
		"fr":     30,
		"ip":     0,
		"op":     60,
		"w":      512,
		"h":      512,
		"ddd":    0,
		"assets": assets,
		"layers": append(layers, map[string]any{"ty": 0, "refId": "comp_0", "nm": "precomp layer"}),
	}
	if fonts != nil {
		document["fonts"] = map[string]any{"list": fonts}
	}

	data, err := json.Marshal(document)
	if err != nil {
		t.Fatalf("encoding animation fixture: %v", err)
	}
	return data
}
