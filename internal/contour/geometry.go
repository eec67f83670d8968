package contour

import (
	"image"
	"math"

	"github.com/ironsheep/shape-vision/internal/model"
)

// Area returns the absolute shoelace area of the closed polygon pts.
// Fewer than three points enclose no area.
func Area(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum int
	j := len(pts) - 1
	for i, p := range pts {
		q := pts[j]
		sum += q.X*p.Y - p.X*q.Y
		j = i
	}
	return math.Abs(float64(sum)) / 2
}

// Perimeter returns the arc length of the closed polygon pts, including the
// closing segment from the last point back to the first.
func Perimeter(pts []image.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var total float64
	j := len(pts) - 1
	for i, p := range pts {
		total += distance(pts[j], p)
		j = i
	}
	return total
}

// Circularity returns 4π·area/perimeter², 1.0 for a perfect circle. A zero
// perimeter yields 0.
func Circularity(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// BoundingBox returns the axis-aligned box enclosing pts. Width and height
// count pixels inclusively (max - min + 1). An empty slice yields a zero box.
func BoundingBox(pts []image.Point) model.BoundingBox {
	if len(pts) == 0 {
		return model.BoundingBox{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return model.BoundingBox{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}
}

// Approximate simplifies the closed polygon pts with Douglas-Peucker so that
// no dropped point lies farther than epsilon from the result.
//
// The ring is split at its first point and the point farthest from it; each
// half is simplified independently and the halves are joined. A final pass
// removes vertices that sit within epsilon of the segment joining their
// neighbours, which the split points can leave behind. Polygons with fewer
// than three points are returned as a copy.
func Approximate(pts []image.Point, epsilon float64) []image.Point {
	n := len(pts)
	if n < 3 {
		return append([]image.Point(nil), pts...)
	}

	far, best := 0, -1.0
	for i, p := range pts {
		if d := distance(pts[0], p); d > best {
			far, best = i, d
		}
	}
	if far == 0 {
		return []image.Point{pts[0]}
	}

	ring := make([]image.Point, 0, n+1)
	ring = append(ring, pts...)
	ring = append(ring, pts[0])

	first := simplify(ring[:far+1], epsilon)
	second := simplify(ring[far:], epsilon)

	// Both halves share their end points.
	out := make([]image.Point, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)

	return pruneCollinear(out, epsilon)
}

// simplify runs open-chain Douglas-Peucker over pts, always keeping both end
// points.
func simplify(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) <= 2 {
		return append([]image.Point(nil), pts...)
	}

	keep := make([]bool, len(pts))
	keep[0], keep[len(pts)-1] = true, true

	type span struct{ lo, hi int }
	stack := []span{{0, len(pts) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx, best := -1, epsilon
		for i := s.lo + 1; i < s.hi; i++ {
			if d := lineDistance(pts[i], pts[s.lo], pts[s.hi]); d > best {
				idx, best = i, d
			}
		}
		if idx < 0 {
			continue
		}
		keep[idx] = true
		stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
	}

	out := make([]image.Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func pruneCollinear(pts []image.Point, epsilon float64) []image.Point {
	for changed := true; changed && len(pts) > 3; {
		changed = false
		for i := 0; i < len(pts) && len(pts) > 3; i++ {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			if lineDistance(pts[i], prev, next) <= epsilon {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return pts
}

// lineDistance is the perpendicular distance from p to the line through a
// and b, or the distance to a when a and b coincide.
func lineDistance(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return distance(p, a)
	}
	cross := dx*float64(p.Y-a.Y) - dy*float64(p.X-a.X)
	return math.Abs(cross) / length
}

func distance(a, b image.Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
