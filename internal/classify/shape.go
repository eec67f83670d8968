package classify

import (
	"math"

	"github.com/ironsheep/shape-vision/internal/contour"
	"github.com/ironsheep/shape-vision/internal/model"
)

// Shape names.
const (
	Circle    = "circle"
	Triangle  = "triangle"
	Rectangle = "rectangle"
	Square    = "square"
	Pentagon  = "pentagon"
	Hexagon   = "hexagon"
	Polygon   = "polygon"
)

var supportedShapes = []string{Circle, Triangle, Rectangle, Square, Pentagon, Hexagon, Polygon, Unknown}

const (
	baseShapeConfidence = 0.5
	minClassifiableArea = 100
	approxTolerance     = 0.02
)

// ShapeClassifier names the geometric shape of a region boundary.
type ShapeClassifier struct{}

// NewShapeClassifier returns a shape classifier.
func NewShapeClassifier() *ShapeClassifier {
	return &ShapeClassifier{}
}

// SupportedShapes lists every name Classify can return.
func (s *ShapeClassifier) SupportedShapes() []string {
	return append([]string(nil), supportedShapes...)
}

// Classify names the shape of boundary. box supplies the area and aspect
// ratios and should enclose boundary.
//
// # Decision Order
//
//  1. Area under 100 square pixels: unknown
//  2. 3 vertices: triangle
//  3. 4 vertices: square when 0.9 <= aspect <= 1.1, else rectangle
//  4. Circularity above 0.75: circle
//  5. 5, 6 or more vertices: pentagon, hexagon, polygon
//  6. Fewer than 3 vertices: circle when circularity is above 0.6, else unknown
//
// Vertex counts are tested before circularity because a square's circularity
// (π/4) already exceeds the circle threshold.
func (s *ShapeClassifier) Classify(boundary model.Boundary, box model.BoundingBox) model.Shape {
	area := contour.Area(boundary)
	perimeter := contour.Perimeter(boundary)
	vertices := len(contour.Approximate(boundary, approxTolerance*perimeter))
	circularity := contour.Circularity(area, perimeter)

	var areaRatio, aspectRatio float64
	if boxArea := box.Area(); boxArea > 0 {
		areaRatio = area / float64(boxArea)
	}
	if box.Height > 0 {
		aspectRatio = float64(box.Width) / float64(box.Height)
	}

	name := Unknown
	if area >= minClassifiableArea {
		name = shapeName(vertices, circularity, aspectRatio)
	}

	return model.Shape{
		Name:        name,
		Confidence:  shapeConfidence(name, circularity, areaRatio, aspectRatio),
		Vertices:    vertices,
		AreaRatio:   areaRatio,
		AspectRatio: aspectRatio,
	}
}

func squareAspect(aspect float64) bool {
	return aspect >= 0.9 && aspect <= 1.1
}

func shapeName(vertices int, circularity, aspect float64) string {
	switch {
	case vertices == 3:
		return Triangle
	case vertices == 4:
		if squareAspect(aspect) {
			return Square
		}
		return Rectangle
	case circularity > 0.75:
		return Circle
	case vertices == 5:
		return Pentagon
	case vertices == 6:
		return Hexagon
	case vertices > 6:
		return Polygon
	case circularity > 0.6:
		return Circle
	default:
		return Unknown
	}
}

func shapeConfidence(name string, circularity, areaRatio, aspect float64) float64 {
	conf := baseShapeConfidence
	switch name {
	case Circle:
		conf = circularity * 1.2
	case Square:
		if squareAspect(aspect) {
			conf += 0.3
		}
		if areaRatio > 0.8 {
			conf += 0.2
		}
	case Rectangle:
		if areaRatio > 0.8 {
			conf += 0.3
		}
		if !squareAspect(aspect) {
			conf += 0.2
		}
	case Triangle:
		if areaRatio >= 0.4 && areaRatio <= 0.6 {
			conf += 0.3
		}
	case Pentagon, Hexagon, Polygon:
		if areaRatio > 0.7 {
			conf += 0.2
		}
	}
	return math.Min(conf, 1)
}
