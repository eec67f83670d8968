package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV is an 8-bit hue/saturation/value triple on the compact scale used by
// camera pipelines: hue 0-180 (degrees halved), saturation and value 0-255.
type HSV struct {
	H uint8 `json:"h"`
	S uint8 `json:"s"`
	V uint8 `json:"v"`
}

// HSVImage is a dense HSV pixel buffer, row-major, origin at (0, 0).
type HSVImage struct {
	Width  int
	Height int
	Pix    []HSV
}

// At returns the HSV value at (x, y). No bounds checking is performed.
func (h *HSVImage) At(x, y int) HSV {
	return h.Pix[y*h.Width+x]
}

// Len returns the number of pixels in the buffer.
func (h *HSVImage) Len() int {
	return len(h.Pix)
}

// RGBToHSV converts 8-bit RGB components to the compact 8-bit HSV scale.
//
// Conversion goes through go-colorful's Hsv, which yields hue in [0, 360) and
// saturation/value in [0, 1]; the result is rounded to the nearest integer.
func RGBToHSV(r, g, b uint8) HSV {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	hue := math.Round(h / 2)
	if hue >= 180 {
		hue = 0
	}
	return HSV{
		H: uint8(hue),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// ToHSV converts every pixel of img to HSV. Alpha is ignored.
func ToHSV(img image.Image) *HSVImage {
	b := img.Bounds()
	out := &HSVImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]HSV, b.Dx()*b.Dy()),
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Pix[y*out.Width+x] = RGBToHSV(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}
	return out
}
