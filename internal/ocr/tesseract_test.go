package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/shape-vision/internal/model"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// labelledFrame returns a white frame with a gray panel at panel and text
// rendered inside it, scaled up for better recognition.
func labelledFrame(text string, panel image.Rectangle, scale int) *image.RGBA {
	small := image.NewRGBA(image.Rect(0, 0, len(text)*7+20, 30))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 10, 20, text, color.Black)

	frame := image.NewRGBA(image.Rect(0, 0, panel.Max.X+50, panel.Max.Y+50))
	draw.Draw(frame, frame.Bounds(), image.White, image.Point{}, draw.Src)
	for y := 0; y < small.Bounds().Dy()*scale; y++ {
		for x := 0; x < small.Bounds().Dx()*scale; x++ {
			p := image.Pt(panel.Min.X+x, panel.Min.Y+y)
			if p.In(panel) {
				frame.Set(p.X, p.Y, small.At(x/scale, y/scale))
			}
		}
	}
	return frame
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") || strings.Contains(msg, "language") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

func TestReadObjectText_BoxOutsideFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 50, 50))

	result, err := ReadObjectText(frame, model.BoundingBox{X: 100, Y: 100, Width: 20, Height: 20}, "eng")
	if err != nil {
		t.Fatalf("ReadObjectText failed: %v", err)
	}
	if result.FullText != "" || len(result.Regions) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestReadObjects_NoFrame(t *testing.T) {
	r := NewReader("", "")
	out, err := r.ReadObjects(model.DetectionResult{Objects: []model.DetectedObject{{}}})
	if err != nil {
		t.Fatalf("ReadObjects failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d results, want 0", len(out))
	}
}

func TestBoundsOffset(t *testing.T) {
	b := Bounds{X1: 1, Y1: 2, X2: 10, Y2: 20}
	got := b.offset(image.Pt(100, 50))
	want := Bounds{X1: 101, Y1: 52, X2: 110, Y2: 70}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestOCRResult_Text(t *testing.T) {
	r := &OCRResult{FullText: "  EXIT\n"}
	if r.Text() != "EXIT" {
		t.Errorf("got %q", r.Text())
	}
}

func TestExtractText_NonExistentFile(t *testing.T) {
	if _, err := ExtractText("/nonexistent/path/image.png", "eng"); err == nil {
		t.Error("ExtractText should fail for non-existent file")
	}
}

func TestExtractText_RealText(t *testing.T) {
	path := writePNG(t, labelledFrame("STOP", image.Rect(0, 0, 400, 120), 3))

	result, err := ExtractText(path, "eng")
	skipWithoutTesseract(t, err)
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	t.Logf("Extracted text: %q", result.Text())
	if !strings.Contains(strings.ToUpper(result.Text()), "STOP") {
		t.Log("Warning: expected text not recognized - may need larger scale or different font")
	}
}

func TestReadObjectText_OffsetsToFrame(t *testing.T) {
	panel := image.Rect(120, 80, 520, 200)
	frame := labelledFrame("EXIT", panel, 3)
	box := model.BoundingBox{X: panel.Min.X, Y: panel.Min.Y, Width: panel.Dx(), Height: panel.Dy()}

	result, err := NewReader("eng", "").ReadObjectText(frame, box)
	skipWithoutTesseract(t, err)
	if err != nil {
		t.Fatalf("ReadObjectText failed: %v", err)
	}

	t.Logf("Extracted text: %q, %d regions", result.Text(), len(result.Regions))
	for _, region := range result.Regions {
		if region.Bounds.X1 < panel.Min.X || region.Bounds.Y1 < panel.Min.Y {
			t.Errorf("region %q not offset to frame coordinates: %+v", region.Text, region.Bounds)
		}
	}
}
