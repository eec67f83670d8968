package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    HSV
	}{
		{"red", 255, 0, 0, HSV{0, 255, 255}},
		{"green", 0, 255, 0, HSV{60, 255, 255}},
		{"blue", 0, 0, 255, HSV{120, 255, 255}},
		{"yellow", 255, 255, 0, HSV{30, 255, 255}},
		{"white", 255, 255, 255, HSV{0, 0, 255}},
		{"black", 0, 0, 0, HSV{0, 0, 0}},
		{"gray", 128, 128, 128, HSV{0, 0, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RGBToHSV(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("RGBToHSV(%d,%d,%d): got %+v, want %+v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestRGBToHSV_HueWrapsBelow180(t *testing.T) {
	// Hue 359 degrees rounds to 180 on the halved scale and must wrap to 0.
	got := RGBToHSV(255, 0, 4)
	if got.H >= 180 {
		t.Errorf("hue out of range: %d", got.H)
	}
}

func TestToHSV(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 13, 22))
	for y := 20; y < 22; y++ {
		for x := 10; x < 13; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	img.Set(10, 20, color.RGBA{255, 0, 0, 255})

	hsv := ToHSV(img)

	if hsv.Width != 3 || hsv.Height != 2 || hsv.Len() != 6 {
		t.Fatalf("size: got %dx%d (%d pixels)", hsv.Width, hsv.Height, hsv.Len())
	}
	if got := hsv.At(0, 0); got.H != 0 {
		t.Errorf("origin pixel hue: got %d, want 0", got.H)
	}
	if got := hsv.At(2, 1); got.H != 120 {
		t.Errorf("last pixel hue: got %d, want 120", got.H)
	}
}
