package imagedata_test

import (
	"bytes"
	"testing"

	"tryon/internal/imagedata"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encoded := imagedata.Encode(pngHeader, "")
	data, mimeType, err := imagedata.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mimeType != "image/png" {
		t.Fatalf("expected sniffed image/png, got %s", mimeType)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Fatal("payload mismatch after round trip")
	}
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg"},
		{"png", pngHeader, "image/png"},
		{"webp", append([]byte("RIFF\x00\x00\x00\x00WEBP"), 0), "image/webp"},
		{"gif", []byte("GIF89a trailer"), "image/gif"},
		{"unknown", []byte{1, 2, 3}, "image/png"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := imagedata.DetectMIME(tc.data); got != tc.want {
				t.Fatalf("DetectMIME = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDecodeRejectsNonDataURL(t *testing.T) {
	if _, _, err := imagedata.Decode("https://shop.example/dress.jpg"); err != imagedata.ErrNotDataURL {
		t.Fatalf("expected ErrNotDataURL, got %v", err)
	}
}

func TestDecodeRejectsNonBase64Encoding(t *testing.T) {
	if _, _, err := imagedata.Decode("data:text/plain,hello"); err == nil {
		t.Fatal("expected error for non-base64 data URL")
	}
}

func TestDecodeRejectsMissingComma(t *testing.T) {
	if _, _, err := imagedata.Decode("data:image/png;base64"); err == nil {
		t.Fatal("expected error for malformed data URL")
	}
}
