package classify

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/shape-vision/internal/imaging"
	"github.com/ironsheep/shape-vision/internal/model"
)

// createTestImage creates a solid color test image.
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// hsvPixels builds an HSV buffer from runs of identical pixels.
func hsvPixels(runs map[imaging.HSV]int) *imaging.HSVImage {
	var pix []imaging.HSV
	for p, n := range runs {
		for i := 0; i < n; i++ {
			pix = append(pix, p)
		}
	}
	return &imaging.HSVImage{Width: len(pix), Height: 1, Pix: pix}
}

func fullBox(img image.Image) model.BoundingBox {
	b := img.Bounds()
	return model.BoundingBox{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

func TestColorClassifier_SolidColors(t *testing.T) {
	c := NewColorClassifier()

	tests := []struct {
		name    string
		fill    color.Color
		want    string
		wantRGB [3]uint8
	}{
		{"red", color.RGBA{255, 0, 0, 255}, "red", [3]uint8{255, 0, 0}},
		{"dark red wraps", color.RGBA{200, 0, 30, 255}, "red", [3]uint8{255, 0, 0}},
		{"green", color.RGBA{0, 200, 0, 255}, "green", [3]uint8{0, 255, 0}},
		{"blue", color.RGBA{0, 0, 220, 255}, "blue", [3]uint8{0, 0, 255}},
		{"yellow", color.RGBA{230, 230, 0, 255}, "yellow", [3]uint8{255, 255, 0}},
		{"white", color.White, White, [3]uint8{255, 255, 255}},
		{"black", color.Black, Black, [3]uint8{0, 0, 0}},
		{"gray", color.RGBA{128, 128, 128, 255}, Gray, [3]uint8{128, 128, 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createTestImage(40, 40, tt.fill)
			got := c.Classify(img, fullBox(img))
			if got.Name != tt.want {
				t.Errorf("Name: got %s, want %s", got.Name, tt.want)
			}
			if got.RGB() != tt.wantRGB {
				t.Errorf("RGB: got %v, want %v", got.RGB(), tt.wantRGB)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("Confidence out of range: %f", got.Confidence)
			}
		})
	}
}

func TestColorClassifier_MostlyRed(t *testing.T) {
	c := NewColorClassifier()
	px := hsvPixels(map[imaging.HSV]int{
		{H: 0, S: 255, V: 200}:   90,
		{H: 60, S: 255, V: 200}:  5,
		{H: 175, S: 200, V: 180}: 5,
	})

	got := c.ClassifyHSV(px)
	if got.Name != "red" {
		t.Fatalf("Name: got %s, want red", got.Name)
	}
	if got.Confidence < 0.8 {
		t.Errorf("Confidence: got %f, want >= 0.8", got.Confidence)
	}
}

func TestColorClassifier_ConfidenceCapped(t *testing.T) {
	img := createTestImage(30, 30, color.RGBA{255, 0, 0, 255})
	got := NewColorClassifier().Classify(img, fullBox(img))
	if got.Confidence != 1 {
		t.Errorf("Confidence: got %f, want 1", got.Confidence)
	}
}

func TestColorClassifier_LowSaturationIsAchromatic(t *testing.T) {
	c := NewColorClassifier()
	tints := []color.RGBA{
		{140, 128, 128, 255},
		{120, 130, 125, 255},
		{210, 215, 220, 255},
		{40, 42, 45, 255},
	}
	for _, tint := range tints {
		img := createTestImage(20, 20, tint)
		got := c.Classify(img, fullBox(img))
		switch got.Name {
		case White, Black, Gray:
		default:
			t.Errorf("tint %v classified as chromatic %s", tint, got.Name)
		}
	}
}

func TestColorClassifier_Fallback(t *testing.T) {
	c := NewColorClassifier()
	// Saturation 40 sits between the gray ceiling (30) and the chromatic
	// floor (50), so no palette range matches.
	px := hsvPixels(map[imaging.HSV]int{{H: 60, S: 40, V: 150}: 50})

	got := c.ClassifyHSV(px)
	if got.Name != "green" {
		t.Errorf("Name: got %s, want green", got.Name)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence: got %f, want 0.5", got.Confidence)
	}
}

func TestFallbackName(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    string
	}{
		{0, 10, 20, Black},
		{0, 10, 250, White},
		{0, 10, 120, Gray},
		{90, 100, 30, "cyan"},
		{110, 200, 10, "blue"},
		{0, 29, 10, Black},
		{5, 100, 150, "red"},
		{175, 100, 150, "red"},
		{20, 100, 150, "orange"},
		{30, 100, 150, "yellow"},
		{60, 100, 150, "green"},
		{90, 100, 150, "cyan"},
		{110, 100, 150, "blue"},
		{140, 100, 150, "purple"},
		{160, 100, 150, "pink"},
	}
	for _, tt := range tests {
		if got := fallbackName(tt.h, tt.s, tt.v); got != tt.want {
			t.Errorf("fallbackName(%v,%v,%v): got %s, want %s", tt.h, tt.s, tt.v, got, tt.want)
		}
	}
}

func TestColorClassifier_EmptyCrop(t *testing.T) {
	c := NewColorClassifier()
	img := createTestImage(50, 50, color.RGBA{255, 0, 0, 255})
	want := model.Color{R: 128, G: 128, B: 128, Name: Unknown, Confidence: 0}

	if got := c.Classify(img, model.BoundingBox{X: 100, Y: 100, Width: 20, Height: 20}); got != want {
		t.Errorf("outside box: got %+v, want %+v", got, want)
	}
	if got := c.Classify(img, model.BoundingBox{X: 10, Y: 10}); got != want {
		t.Errorf("zero-size box: got %+v, want %+v", got, want)
	}
	if got := c.Classify(nil, model.BoundingBox{Width: 5, Height: 5}); got != want {
		t.Errorf("nil frame: got %+v, want %+v", got, want)
	}
	if got := c.ClassifyHSV(&imaging.HSVImage{}); got != want {
		t.Errorf("empty HSV: got %+v, want %+v", got, want)
	}
}

func TestColorClassifier_ClipsBoxToFrame(t *testing.T) {
	img := createTestImage(60, 60, color.White)
	for y := 40; y < 60; y++ {
		for x := 40; x < 60; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}

	got := NewColorClassifier().Classify(img, model.BoundingBox{X: 40, Y: 40, Width: 50, Height: 50})
	if got.Name != "blue" {
		t.Errorf("Name: got %s, want blue", got.Name)
	}
}

func TestColorClassifier_Idempotent(t *testing.T) {
	c := NewColorClassifier()
	img := createTestImage(64, 48, color.RGBA{250, 120, 10, 255})
	for y := 10; y < 20; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{30, 30, 200, 255})
		}
	}
	box := model.BoundingBox{X: 5, Y: 5, Width: 40, Height: 30}

	first := c.Classify(img, box)
	second := c.Classify(img, box)
	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestColorClassifier_SupportedColors(t *testing.T) {
	names := NewColorClassifier().SupportedColors()
	if len(names) != 11 {
		t.Fatalf("expected 11 colors, got %d: %v", len(names), names)
	}
	if names[0] != "red" {
		t.Errorf("first color: got %s, want red", names[0])
	}
	for _, n := range names {
		if n == "red2" {
			t.Error("red wrap range should not be listed separately")
		}
	}
}

func TestColorClassifier_AddColor(t *testing.T) {
	base := NewColorClassifier()
	pastel := HSVRange{
		Lower: imaging.HSV{H: 0, S: 35, V: 100},
		Upper: imaging.HSV{H: 180, S: 45, V: 255},
	}

	extended := base.AddColor("Pastel", pastel, [3]uint8{200, 220, 200})

	if len(base.SupportedColors()) != 11 {
		t.Error("AddColor must not modify the receiver")
	}
	names := extended.SupportedColors()
	if names[len(names)-1] != "pastel" {
		t.Errorf("new color not appended: %v", names)
	}

	got := extended.ClassifyHSV(hsvPixels(map[imaging.HSV]int{{H: 60, S: 40, V: 150}: 20}))
	if got.Name != "pastel" {
		t.Errorf("Name: got %s, want pastel", got.Name)
	}
	if got.RGB() != [3]uint8{200, 220, 200} {
		t.Errorf("RGB: got %v", got.RGB())
	}

	replaced := extended.AddColor("GREEN", pastel, [3]uint8{1, 2, 3})
	if len(replaced.SupportedColors()) != len(names) {
		t.Error("replacing an existing color should not grow the palette")
	}
}

func TestHSVRange_Contains(t *testing.T) {
	r := HSVRange{Lower: imaging.HSV{H: 10, S: 50, V: 50}, Upper: imaging.HSV{H: 20, S: 255, V: 255}}
	tests := []struct {
		p    imaging.HSV
		want bool
	}{
		{imaging.HSV{H: 10, S: 50, V: 50}, true},
		{imaging.HSV{H: 20, S: 255, V: 255}, true},
		{imaging.HSV{H: 9, S: 100, V: 100}, false},
		{imaging.HSV{H: 15, S: 49, V: 100}, false},
		{imaging.HSV{H: 21, S: 100, V: 100}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%+v): got %v, want %v", tt.p, got, tt.want)
		}
	}
}
