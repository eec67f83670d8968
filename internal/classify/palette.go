package classify

import "github.com/ironsheep/shape-vision/internal/imaging"

// Color names that describe brightness rather than hue.
const (
	White = "white"
	Black = "black"
	Gray  = "gray"

	Unknown = "unknown"
)

// HSVRange is an inclusive box in 8-bit HSV space.
type HSVRange struct {
	Lower imaging.HSV `json:"lower"`
	Upper imaging.HSV `json:"upper"`
}

// Contains reports whether p lies inside the range, bounds included.
func (r HSVRange) Contains(p imaging.HSV) bool {
	return p.H >= r.Lower.H && p.H <= r.Upper.H &&
		p.S >= r.Lower.S && p.S <= r.Upper.S &&
		p.V >= r.Lower.V && p.V <= r.Upper.V
}

func (r HSVRange) containsHue(h int) bool {
	return h >= int(r.Lower.H) && h <= int(r.Upper.H)
}

// ColorDef is one named palette entry. Red needs two ranges because hue wraps
// at 0/180.
type ColorDef struct {
	Name   string     `json:"name"`
	Ranges []HSVRange `json:"ranges"`
	RGB    [3]uint8   `json:"rgb"`
}

func (d ColorDef) achromatic() bool {
	return d.Name == White || d.Name == Black || d.Name == Gray
}

func hsvRange(h1, s1, v1, h2, s2, v2 uint8) HSVRange {
	return HSVRange{
		Lower: imaging.HSV{H: h1, S: s1, V: v1},
		Upper: imaging.HSV{H: h2, S: s2, V: v2},
	}
}

// DefaultPalette returns the built-in palette in scoring order.
func DefaultPalette() []ColorDef {
	return []ColorDef{
		{Name: "red", RGB: [3]uint8{255, 0, 0}, Ranges: []HSVRange{
			hsvRange(0, 50, 50, 10, 255, 255),
			hsvRange(170, 50, 50, 180, 255, 255),
		}},
		{Name: "orange", RGB: [3]uint8{255, 165, 0}, Ranges: []HSVRange{hsvRange(11, 50, 50, 25, 255, 255)}},
		{Name: "yellow", RGB: [3]uint8{255, 255, 0}, Ranges: []HSVRange{hsvRange(26, 50, 50, 35, 255, 255)}},
		{Name: "green", RGB: [3]uint8{0, 255, 0}, Ranges: []HSVRange{hsvRange(36, 50, 50, 85, 255, 255)}},
		{Name: "cyan", RGB: [3]uint8{0, 255, 255}, Ranges: []HSVRange{hsvRange(86, 50, 50, 95, 255, 255)}},
		{Name: "blue", RGB: [3]uint8{0, 0, 255}, Ranges: []HSVRange{hsvRange(96, 50, 50, 125, 255, 255)}},
		{Name: "purple", RGB: [3]uint8{128, 0, 128}, Ranges: []HSVRange{hsvRange(126, 50, 50, 145, 255, 255)}},
		{Name: "pink", RGB: [3]uint8{255, 192, 203}, Ranges: []HSVRange{hsvRange(146, 50, 50, 169, 255, 255)}},
		{Name: White, RGB: [3]uint8{255, 255, 255}, Ranges: []HSVRange{hsvRange(0, 0, 200, 180, 30, 255)}},
		{Name: Black, RGB: [3]uint8{0, 0, 0}, Ranges: []HSVRange{hsvRange(0, 0, 0, 180, 255, 50)}},
		{Name: Gray, RGB: [3]uint8{128, 128, 128}, Ranges: []HSVRange{hsvRange(0, 0, 51, 180, 30, 199)}},
	}
}

// unknownRGB is the display color for names missing from the palette.
var unknownRGB = [3]uint8{128, 128, 128}

// hueBand maps a mean hue onto a name for the fallback path.
type hueBand struct {
	max  float64
	name string
}

var fallbackHueBands = []hueBand{
	{10, "red"},
	{25, "orange"},
	{35, "yellow"},
	{85, "green"},
	{95, "cyan"},
	{125, "blue"},
	{145, "purple"},
	{169, "pink"},
}
