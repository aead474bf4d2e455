package image

import (
	"bytes"
	"errors"
	"fmt"
	stdimage "image"

	"github.com/disintegration/imaging"
)

// ErrNotImage is returned for payloads no registered decoder recognizes.
var ErrNotImage = errors.New("not an image")

const DefaultPreviewSize = 480

// Info describes a validated image payload.
type Info struct {
	Format   string
	MIMEType string
	Width    int
	Height   int
}

// Detect reads only the image header. Importing imaging registers the
// png, jpeg, gif, tiff and bmp decoders.
func Detect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrNotImage
	}
	cfg, format, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return Info{
		Format:   format,
		MIMEType: "image/" + format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// Preview scales the image to fit in a maxSide square and encodes it as PNG.
// Images already inside the box keep their size.
func Preview(data []byte, maxSide int) ([]byte, error) {
	if maxSide <= 0 {
		maxSide = DefaultPreviewSize
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	thumb := imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding preview: %w", err)
	}
	return buf.Bytes(), nil
}

// ToPNG re-encodes the image as PNG, applying any EXIF orientation.
func ToPNG(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
