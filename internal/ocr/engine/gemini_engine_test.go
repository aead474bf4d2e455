package engine

import (
	"bytes"
	"errors"
	stdimage "image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	img "img2text/internal/image"
)

func TestGeminiImage(t *testing.T) {
	src := stdimage.NewPaletted(stdimage.Rect(0, 0, 4, 3), color.Palette{color.White, color.Black})

	encode := func(enc func(*bytes.Buffer) error) []byte {
		t.Helper()
		var buf bytes.Buffer
		if err := enc(&buf); err != nil {
			t.Fatalf("encoding fixture: %v", err)
		}
		return buf.Bytes()
	}
	pngData := encode(func(b *bytes.Buffer) error { return png.Encode(b, src) })
	jpegData := encode(func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) })
	gifData := encode(func(b *bytes.Buffer) error { return gif.Encode(b, src, nil) })

	testCases := []struct {
		name       string
		input      []byte
		wantFormat string
		passedAsIs bool
	}{
		{"png is sent unchanged", pngData, "png", true},
		{"jpeg is sent unchanged", jpegData, "jpeg", true},
		{"gif is converted", gifData, "png", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			format, payload, err := geminiImage(tc.input)

			// Assert
			if err != nil {
				t.Fatalf("geminiImage: %v", err)
			}
			if format != tc.wantFormat {
				t.Errorf("expected format %q, got %q", tc.wantFormat, format)
			}
			if tc.passedAsIs != bytes.Equal(payload, tc.input) {
				t.Errorf("payload unchanged = %v, expected %v", !tc.passedAsIs, tc.passedAsIs)
			}
			info, err := img.Detect(payload)
			if err != nil || info.Format != format {
				t.Errorf("payload does not decode as %s: %+v, %v", format, info, err)
			}
		})
	}
}

func TestGeminiImage_NotImage(t *testing.T) {
	if _, _, err := geminiImage([]byte("plain text")); !errors.Is(err, img.ErrNotImage) {
		t.Errorf("expected ErrNotImage, got %v", err)
	}
}
