// Package imagedata converts between raw image bytes and the inline data
// URL form used on the wire and in the job store.
package imagedata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const prefix = "data:"

// ErrNotDataURL is returned when a value does not carry inline image data.
var ErrNotDataURL = errors.New("value is not a data URL")

// Encode wraps raw bytes in a base64 data URL. An empty mimeType is sniffed
// from the payload.
func Encode(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = DetectMIME(data)
	}
	return prefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a data URL into raw bytes and the declared MIME type.
func Decode(value string) ([]byte, string, error) {
	if !IsDataURL(value) {
		return nil, "", ErrNotDataURL
	}
	rest := value[len(prefix):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, "", fmt.Errorf("malformed data URL: missing payload separator")
	}
	meta := rest[:comma]
	payload := rest[comma+1:]

	mimeType := meta
	base64Encoded := false
	if idx := strings.IndexByte(meta, ';'); idx >= 0 {
		mimeType = meta[:idx]
		base64Encoded = strings.Contains(meta[idx:], "base64")
	}
	if !base64Encoded {
		return nil, "", fmt.Errorf("unsupported data URL encoding in %q", meta)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URL payload: %w", err)
	}
	if mimeType == "" {
		mimeType = DetectMIME(data)
	}
	return data, mimeType, nil
}

// IsDataURL reports whether a value is an inline data URL.
func IsDataURL(value string) bool {
	return strings.HasPrefix(value, prefix)
}

// DetectMIME identifies common image formats from magic bytes. Unknown
// payloads fall back to image/png.
func DetectMIME(data []byte) string {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xff, 0xd8, 0xff}):
		return "image/jpeg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return "image/png"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "image/gif"
	default:
		return "image/png"
	}
}

// ExtensionFor maps a MIME type to a file extension for saved results.
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
