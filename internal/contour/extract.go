package contour

import (
	"image"

	"github.com/ironsheep/shape-vision/internal/model"
)

// Default area limits in square pixels.
const (
	DefaultMinArea = 500
	DefaultMaxArea = 50000
)

// Region is one admitted foreground region.
type Region struct {
	// Boundary is the compressed outer border, clockwise, in frame coordinates.
	Boundary model.Boundary

	// Box encloses Boundary.
	Box model.BoundingBox

	// Area is the shoelace area of Boundary.
	Area float64

	// Perimeter is the closed arc length of Boundary.
	Perimeter float64
}

// Circularity returns 4π·area/perimeter² for the region.
func (r Region) Circularity() float64 {
	return Circularity(r.Area, r.Perimeter)
}

// Extract finds the outer boundaries of all foreground regions in mask whose
// area lies in [minArea, maxArea], both ends inclusive. Any non-zero mask
// pixel is foreground.
//
// Regions are returned in raster order of their top-left pixel. Regions that
// lie inside a hole of another region are not reported, and a zero-area
// region is never admitted. An empty mask yields nil.
//
// Negative limits or minArea > maxArea are caller errors; they simply admit
// nothing or everything the arithmetic allows.
func Extract(mask *image.Gray, minArea, maxArea float64) []Region {
	if mask == nil || mask.Bounds().Empty() {
		return nil
	}
	m := newBinaryMask(mask)
	origin := mask.Bounds().Min
	outside := floodBackground(m)
	labels := make([]bool, len(m.on))

	var regions []Region
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			i := y*m.width + x
			if !m.on[i] || labels[i] {
				continue
			}
			markComponent(m, labels, x, y)

			// The pixel above a raster-first pixel is background; if the
			// border flood never reached it, this component sits in a hole.
			if y > 0 && !outside[i-m.width] {
				continue
			}

			pts := compress(traceBorder(m, image.Pt(x, y)))
			area := Area(pts)
			if area <= 0 || area < minArea || area > maxArea {
				continue
			}

			boundary := make(model.Boundary, len(pts))
			for j, p := range pts {
				boundary[j] = p.Add(origin)
			}
			regions = append(regions, Region{
				Boundary:  boundary,
				Box:       BoundingBox(boundary),
				Area:      area,
				Perimeter: Perimeter(pts),
			})
		}
	}
	return regions
}

// markComponent labels the 8-connected component containing (x, y).
func markComponent(m *binaryMask, labels []bool, x, y int) {
	stack := []int{y*m.width + x}
	labels[stack[0]] = true
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p := image.Pt(i%m.width, i/m.width)
		for _, d := range directions {
			q := p.Add(d)
			if !m.at(q) {
				continue
			}
			j := q.Y*m.width + q.X
			if !labels[j] {
				labels[j] = true
				stack = append(stack, j)
			}
		}
	}
}

// floodBackground marks every background pixel 4-connected to the image
// border.
func floodBackground(m *binaryMask) []bool {
	outside := make([]bool, len(m.on))
	var stack []int
	push := func(x, y int) {
		i := y*m.width + x
		if m.on[i] || outside[i] {
			return
		}
		outside[i] = true
		stack = append(stack, i)
	}

	for x := 0; x < m.width; x++ {
		push(x, 0)
		push(x, m.height-1)
	}
	for y := 0; y < m.height; y++ {
		push(0, y)
		push(m.width-1, y)
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%m.width, i/m.width
		if x > 0 {
			push(x-1, y)
		}
		if x < m.width-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < m.height-1 {
			push(x, y+1)
		}
	}
	return outside
}
