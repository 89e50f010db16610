// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// MaxArrayElements bounds arrays and maps accepted by the decoder. A
// cache file holds one entry per distinct image, so this is far above
// any real cache and only guards against corrupt length prefixes.
const MaxArrayElements = 1 << 20

var (
	encMode = must(cbor.CoreDetEncOptions().EncMode())
	decMode = must(cbor.DecOptions{
		// Untyped targets get map[string]any, matching encoding/json.
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxArrayElements: MaxArrayElements,
		MaxMapPairs:      MaxArrayElements,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	}.DecMode())
)

func must[T any](mode T, err error) T {
	if err != nil {
		panic("codec: invalid CBOR options: " + err.Error())
	}
	return mode
}

// Marshal encodes v with Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v. Unknown struct fields are ignored so
// an older lottiepack can read a cache a newer one wrote; duplicate map
// keys are rejected.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
