package contour

import "image"

// Clockwise neighbour offsets in image coordinates (Y grows downward),
// starting east.
var directions = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const west = 4

func directionOf(d image.Point) int {
	for i, v := range directions {
		if v == d {
			return i
		}
	}
	return west
}

// binaryMask is a foreground lookup over a mask, in mask-local coordinates.
type binaryMask struct {
	width, height int
	on            []bool
}

func newBinaryMask(g *image.Gray) *binaryMask {
	b := g.Bounds()
	m := &binaryMask{
		width:  b.Dx(),
		height: b.Dy(),
		on:     make([]bool, b.Dx()*b.Dy()),
	}
	for y := 0; y < m.height; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+m.width]
		for x, v := range row {
			m.on[y*m.width+x] = v != 0
		}
	}
	return m
}

func (m *binaryMask) at(p image.Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= m.width || p.Y >= m.height {
		return false
	}
	return m.on[p.Y*m.width+p.X]
}

// traceBorder follows the outer border of the component containing start,
// which must be the component's first pixel in raster order. Points are
// returned clockwise, starting at start, without repeating it.
func traceBorder(m *binaryMask, start image.Point) []image.Point {
	points := []image.Point{start}
	cur := start
	back := west // the pixel left of a raster-first pixel is background

	limit := 4*m.width*m.height + 8
	for step := 0; step < limit; step++ {
		found := -1
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			if m.at(cur.Add(directions[d])) {
				found = d
				break
			}
		}
		if found < 0 {
			// Isolated pixel.
			return points
		}

		next := cur.Add(directions[found])
		if cur == start && len(points) > 1 && next == points[1] {
			break
		}

		prev := cur.Add(directions[(found+7)%8])
		back = directionOf(prev.Sub(next))
		points = append(points, next)
		cur = next
	}

	if len(points) > 1 && points[len(points)-1] == start {
		points = points[:len(points)-1]
	}
	return points
}

// compress keeps only the points where the direction of travel changes.
func compress(pts []image.Point) []image.Point {
	n := len(pts)
	if n < 3 {
		return pts
	}
	out := make([]image.Point, 0, n)
	for i, p := range pts {
		in := p.Sub(pts[(i+n-1)%n])
		outDir := pts[(i+1)%n].Sub(p)
		if in != outDir {
			out = append(out, p)
		}
	}
	return out
}
