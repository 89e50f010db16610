// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottie

import (
	"bytes"
	"strings"
)

// Media is the result of sniffing a payload: its media type and the
// file extension the container uses for it.
type Media struct {
	Type      string
	Extension string
}

// Kind returns the asset kind implied by the media type.
func (m Media) Kind() (AssetKind, bool) {
	switch {
	case strings.HasPrefix(m.Type, "image/"):
		return KindImage, true
	case strings.HasPrefix(m.Type, "audio/"):
		return KindAudio, true
	case strings.HasPrefix(m.Type, "font/"):
		return KindFont, true
	}
	return 0, false
}

type signature struct {
	offset int
	magic  []byte
	media  Media
}

// signatures are checked in order; the first match wins.
var signatures = []signature{
	{0, []byte("\x89PNG\r\n\x1a\n"), Media{"image/png", "png"}},
	{0, []byte("\xff\xd8\xff"), Media{"image/jpeg", "jpg"}},
	{0, []byte("GIF87a"), Media{"image/gif", "gif"}},
	{0, []byte("GIF89a"), Media{"image/gif", "gif"}},
	{8, []byte("WEBP"), Media{"image/webp", "webp"}},
	{8, []byte("WAVE"), Media{"audio/wav", "wav"}},
	{0, []byte("ID3"), Media{"audio/mpeg", "mp3"}},
	{0, []byte("OggS"), Media{"audio/ogg", "ogg"}},
	{0, []byte("fLaC"), Media{"audio/flac", "flac"}},
	{0, []byte("wOFF"), Media{"font/woff", "woff"}},
	{0, []byte("wOF2"), Media{"font/woff2", "woff2"}},
	{0, []byte("OTTO"), Media{"font/otf", "otf"}},
	{0, []byte("\x00\x01\x00\x00"), Media{"font/ttf", "ttf"}},
	{0, []byte("true"), Media{"font/ttf", "ttf"}},
}

// Sniff identifies a payload from its leading bytes. It recognizes the
// raster and vector image formats, audio codecs and font containers
// that Lottie players load. The second result is false for anything
// else.
func Sniff(data []byte) (Media, bool) {
	for _, candidate := range signatures {
		end := candidate.offset + len(candidate.magic)
		if len(data) < end {
			continue
		}
		if !bytes.Equal(data[candidate.offset:end], candidate.magic) {
			continue
		}
		// WEBP and WAVE share the RIFF container.
		if candidate.offset == 8 && !bytes.HasPrefix(data, []byte("RIFF")) {
			continue
		}
		return candidate.media, true
	}

	// BMP has a two-byte magic, so require the full file header.
	if len(data) >= 14 && data[0] == 'B' && data[1] == 'M' {
		return Media{"image/bmp", "bmp"}, true
	}

	// MPEG audio frame without an ID3 tag: 11 sync bits.
	if len(data) >= 2 && data[0] == 0xff && data[1]&0xe0 == 0xe0 {
		return Media{"audio/mpeg", "mp3"}, true
	}

	if isSVG(data) {
		return Media{"image/svg+xml", "svg"}, true
	}
	return Media{}, false
}

// isSVG looks for an <svg element near the start of a text payload.
func isSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	head = bytes.TrimSpace(head)
	if !bytes.HasPrefix(head, []byte("<")) {
		return false
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// extensionTypes maps container file extensions back to media types for
// entries read from an archive.
var extensionTypes = map[string]string{
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"webp":  "image/webp",
	"bmp":   "image/bmp",
	"svg":   "image/svg+xml",
	"mp3":   "audio/mpeg",
	"wav":   "audio/wav",
	"ogg":   "audio/ogg",
	"flac":  "audio/flac",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"woff":  "font/woff",
	"woff2": "font/woff2",
}

// MediaTypeForExtension returns the media type for a file extension
// (without the dot), or false if the extension is not recognized.
func MediaTypeForExtension(extension string) (string, bool) {
	mediaType, ok := extensionTypes[strings.ToLower(extension)]
	return mediaType, ok
}
