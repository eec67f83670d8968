package model

import (
	"image"
	"strings"
	"time"
)

// Point represents a 2D location with floating-point coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is an axis-aligned box in pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`      // Left edge (inclusive)
	Y      int `json:"y"`      // Top edge (inclusive)
	Width  int `json:"width"`  // Horizontal extent in pixels
	Height int `json:"height"` // Vertical extent in pixels
}

// Center returns the integer-divided midpoint of the box.
func (b BoundingBox) Center() Point {
	return Point{
		X: float64(b.X + b.Width/2),
		Y: float64(b.Y + b.Height/2),
	}
}

// Area returns Width × Height.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// Rect converts the box to an image.Rectangle (exclusive max corner).
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Boundary is the closed polygonal outline of a foreground region, in the
// order it was traced. The last point connects back to the first.
type Boundary []image.Point

// Color is the classified color of a region.
//
// R, G and B are the canonical display values of the named color, not the
// measured pixel values.
type Color struct {
	R          uint8   `json:"r"`
	G          uint8   `json:"g"`
	B          uint8   `json:"b"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
}

// RGB returns the color components as a three-element array.
func (c Color) RGB() [3]uint8 {
	return [3]uint8{c.R, c.G, c.B}
}

// BGR returns the components in blue-green-red order, the channel order
// camera frames conventionally use.
func (c Color) BGR() [3]uint8 {
	return [3]uint8{c.B, c.G, c.R}
}

// Shape is the classified geometry of a region.
type Shape struct {
	// Name is one of circle, triangle, rectangle, square, pentagon, hexagon,
	// polygon or unknown.
	Name string `json:"name"`

	// Confidence indicates how well the region fits Name (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Vertices is the vertex count of the simplified polygon.
	Vertices int `json:"vertices"`

	// AreaRatio is contour area divided by bounding box area.
	AreaRatio float64 `json:"area_ratio"`

	// AspectRatio is bounding box width divided by height.
	AspectRatio float64 `json:"aspect_ratio"`
}

// DetectedObject is one foreground region found in a frame.
type DetectedObject struct {
	Box      BoundingBox
	Boundary Boundary

	// Confidence is the detection-level score, min(2 × circularity, 1).
	// It says how clean a blob the region is and is unrelated to
	// Shape.Confidence.
	Confidence float64

	Color *Color
	Shape *Shape

	// ID is assigned by callers for tracking or display only.
	ID *int
}

// NewDetectedObject creates an object with no color, shape or id.
func NewDetectedObject(box BoundingBox, boundary Boundary, confidence float64) DetectedObject {
	return DetectedObject{
		Box:        box,
		Boundary:   boundary,
		Confidence: confidence,
	}
}

// WithColor returns a copy of o with its color set.
func (o DetectedObject) WithColor(c Color) DetectedObject {
	o.Color = &c
	return o
}

// WithShape returns a copy of o with its shape set.
func (o DetectedObject) WithShape(s Shape) DetectedObject {
	o.Shape = &s
	return o
}

// WithID returns a copy of o with its id set.
func (o DetectedObject) WithID(id int) DetectedObject {
	o.ID = &id
	return o
}

// Center returns the center of the object's bounding box.
func (o DetectedObject) Center() Point {
	return o.Box.Center()
}

// Area returns the area of the object's bounding box.
func (o DetectedObject) Area() int {
	return o.Box.Area()
}

// ColorName returns the color name or "unknown" when unclassified.
func (o DetectedObject) ColorName() string {
	if o.Color == nil {
		return "unknown"
	}
	return o.Color.Name
}

// ShapeName returns the shape name or "unknown" when unclassified.
func (o DetectedObject) ShapeName() string {
	if o.Shape == nil {
		return "unknown"
	}
	return o.Shape.Name
}

// DetectionResult is the snapshot of everything found in a single frame.
//
// Frame is borrowed from the caller and must be treated as read-only.
type DetectionResult struct {
	Objects   []DetectedObject
	Timestamp time.Time
	Frame     image.Image
}

// Len returns the number of detected objects.
func (r DetectionResult) Len() int {
	return len(r.Objects)
}

// ByColor returns the objects whose color name matches name, ignoring case.
func (r DetectionResult) ByColor(name string) []DetectedObject {
	var out []DetectedObject
	for _, o := range r.Objects {
		if o.Color != nil && strings.EqualFold(o.Color.Name, name) {
			out = append(out, o)
		}
	}
	return out
}

// ByShape returns the objects whose shape name matches name, ignoring case.
func (r DetectionResult) ByShape(name string) []DetectedObject {
	var out []DetectedObject
	for _, o := range r.Objects {
		if o.Shape != nil && strings.EqualFold(o.Shape.Name, name) {
			out = append(out, o)
		}
	}
	return out
}
