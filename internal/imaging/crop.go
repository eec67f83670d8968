package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// EncodedImage is a PNG image encoded as base64, ready for a JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// CropClipped extracts rect from img, clipped to the image bounds.
//
// Returns nil when the clipped region is empty (for example a box lying
// entirely outside the frame). The result is anchored at (0, 0).
func CropClipped(img image.Image, rect image.Rectangle) image.Image {
	clipped := rect.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil
	}
	return imaging.Crop(img, clipped)
}

// MedianBlur applies a median filter with the given kernel size (rounded up
// to odd). Sizes of 1 or less return img unchanged.
func MedianBlur(img image.Image, kernelSize int) image.Image {
	k := OddKernel(kernelSize)
	if k <= 1 {
		return img
	}
	return effect.Median(img, float64((k-1)/2))
}

// ResizeToWidth scales img down so its width is at most maxWidth, keeping the
// aspect ratio. Images already narrow enough are returned unchanged.
func ResizeToWidth(img image.Image, maxWidth int) image.Image {
	w := img.Bounds().Dx()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Linear)
}
