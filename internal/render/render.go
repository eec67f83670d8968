// Package render draws detection results onto a copy of a frame.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/shape-vision/internal/model"
	"github.com/ironsheep/shape-vision/internal/navigation"
)

var (
	// Unclassified objects are outlined in green.
	defaultBoxColor = color.RGBA{0, 255, 0, 255}
	labelFg         = color.RGBA{255, 255, 255, 255}
	labelBg         = color.RGBA{0, 0, 0, 255}
	markerColor     = color.RGBA{255, 255, 255, 255}
	boundaryColor   = color.RGBA{0, 255, 0, 255}
)

// basicfont.Face7x13 metrics.
const (
	glyphWidth  = 7
	glyphHeight = 13
	glyphAscent = 11
)

// Options controls what Annotate draws.
type Options struct {
	LineThickness int
	ShowBoundary  bool
	ShowLabels    bool

	// Zones, when set, are drawn as a grid underneath the objects.
	Zones     []navigation.Zone
	ZoneColor color.RGBA
}

// DefaultOptions draws boxes and labels with 2px lines.
func DefaultOptions() Options {
	return Options{
		LineThickness: 2,
		ShowLabels:    true,
		ZoneColor:     color.RGBA{255, 255, 0, 255},
	}
}

// Annotate draws every object of result onto a copy of frame using the
// default options. The frame itself is not modified.
func Annotate(frame image.Image, result model.DetectionResult) *image.RGBA {
	return AnnotateWith(frame, result, DefaultOptions())
}

// AnnotateWith is Annotate with explicit options.
//
// Each object gets its bounding box in the classified color's canonical RGB,
// a "<color> <shape>" label above the box and a cross at its center.
func AnnotateWith(frame image.Image, result model.DetectionResult, opts Options) *image.RGBA {
	if frame == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)

	thickness := opts.LineThickness
	if thickness < 1 {
		thickness = 1
	}

	for _, z := range opts.Zones {
		strokeRect(out, z.Rect.Add(bounds.Min), 1, opts.ZoneColor)
	}

	for _, o := range result.Objects {
		if opts.ShowBoundary {
			drawPolyline(out, o.Boundary, boundaryColor)
		}

		c := defaultBoxColor
		if o.Color != nil && o.Color.Name != "unknown" {
			c = color.RGBA{o.Color.R, o.Color.G, o.Color.B, 255}
		}
		strokeRect(out, o.Box.Rect(), thickness, c)

		center := o.Center()
		drawCross(out, int(center.X), int(center.Y), 4, markerColor)

		if opts.ShowLabels {
			drawLabel(out, o.Box.X, o.Box.Y, Label(o))
		}
	}
	return out
}

// Label returns the text drawn next to an object.
func Label(o model.DetectedObject) string {
	return o.ColorName() + " " + o.ShapeName()
}

// strokeRect draws the outline of r, growing inward by thickness pixels.
func strokeRect(img *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for i := 0; i < thickness; i++ {
		x0, y0 := r.Min.X+i, r.Min.Y+i
		x1, y1 := r.Max.X-1-i, r.Max.Y-1-i
		if x0 > x1 || y0 > y1 {
			break
		}
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y0, c)
			img.SetRGBA(x, y1, c)
		}
		for y := y0; y <= y1; y++ {
			img.SetRGBA(x0, y, c)
			img.SetRGBA(x1, y, c)
		}
	}
}

func drawCross(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	b := img.Bounds()
	for d := -size; d <= size; d++ {
		if p := image.Pt(cx+d, cy); p.In(b) {
			img.SetRGBA(p.X, p.Y, c)
		}
		if p := image.Pt(cx, cy+d); p.In(b) {
			img.SetRGBA(p.X, p.Y, c)
		}
	}
}

// drawPolyline draws the closed outline through pts with Bresenham lines.
func drawPolyline(img *image.RGBA, pts model.Boundary, c color.RGBA) {
	for i := range pts {
		drawLine(img, pts[i], pts[(i+1)%len(pts)], c)
	}
}

func drawLine(img *image.RGBA, p0, p1 image.Point, c color.RGBA) {
	dx, dy := abs(p1.X-p0.X), -abs(p1.Y-p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}
	err := dx + dy
	b := img.Bounds()
	for {
		if p0.In(b) {
			img.SetRGBA(p0.X, p0.Y, c)
		}
		if p0 == p1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p0.X += sx
		}
		if e2 <= dx {
			err += dx
			p0.Y += sy
		}
	}
}

// drawLabel writes text on a filled background just above (x, y), or just
// inside the top edge when there is no room above.
func drawLabel(img *image.RGBA, x, y int, text string) {
	b := img.Bounds()
	top := y - glyphHeight - 2
	if top < b.Min.Y {
		top = y + 2
	}
	bg := image.Rect(x, top, x+len(text)*glyphWidth+2, top+glyphHeight+1).Intersect(b)
	draw.Draw(img, bg, image.NewUniform(labelBg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelFg),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(top + glyphAscent)},
	}
	d.DrawString(text)
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA".
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
