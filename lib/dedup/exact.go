// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/lottiepack/lib/lottie"
)

// domainKey is a 32-byte BLAKE3 key. Each asset kind hashes under its
// own key so an image and a font with the same bytes never share a
// digest. The keys are the ASCII domain name zero-padded to 32 bytes;
// changing one invalidates every cached fingerprint of that kind.
type domainKey [32]byte

var (
	imageDomainKey = domainKey{
		'l', 'o', 't', 't', 'i', 'e', 'p', 'a', 'c', 'k', '.', 'a', 's', 's', 'e', 't',
		'.', 'i', 'm', 'a', 'g', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	audioDomainKey = domainKey{
		'l', 'o', 't', 't', 'i', 'e', 'p', 'a', 'c', 'k', '.', 'a', 's', 's', 'e', 't',
		'.', 'a', 'u', 'd', 'i', 'o', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	fontDomainKey = domainKey{
		'l', 'o', 't', 't', 'i', 'e', 'p', 'a', 'c', 'k', '.', 'a', 's', 's', 'e', 't',
		'.', 'f', 'o', 'n', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

func domainFor(kind lottie.AssetKind) (domainKey, error) {
	switch kind {
	case lottie.KindImage:
		return imageDomainKey, nil
	case lottie.KindAudio:
		return audioDomainKey, nil
	case lottie.KindFont:
		return fontDomainKey, nil
	}
	return domainKey{}, fmt.Errorf("dedup: unknown asset kind %v", kind)
}

// HashAsset computes the kind-domain digest of data.
func HashAsset(kind lottie.AssetKind, data []byte) (Digest, error) {
	key, err := domainFor(kind)
	if err != nil {
		return Digest{}, err
	}
	return keyedHash(key, data), nil
}

func keyedHash(key domainKey, data []byte) Digest {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("dedup: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Exact fingerprints by content digest only.
type Exact struct{}

// Fingerprint returns the [ExactKey] of data.
func (Exact) Fingerprint(kind lottie.AssetKind, data []byte) (Key, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty %s payload", lottie.ErrInvalidAssetData, kind)
	}
	digest, err := HashAsset(kind, data)
	if err != nil {
		return nil, err
	}
	return ExactKey(digest), nil
}
