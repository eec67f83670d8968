package classify

import (
	"image"
	"math"
	"strings"

	"github.com/ironsheep/shape-vision/internal/imaging"
	"github.com/ironsheep/shape-vision/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scoring constants.
const (
	fallbackThreshold  = 0.1
	fallbackConfidence = 0.5

	dominantHueBoost = 1.2
	vividBoost       = 1.1
	achromaticBoost  = 1.2
	chromaticPenalty = 0.8
	extremeBoost     = 1.3
	extremePenalty   = 0.9

	hueBins = 180
)

// ColorClassifier names the dominant color of a region.
//
// The zero value is not usable; create one with NewColorClassifier.
type ColorClassifier struct {
	palette      []ColorDef
	medianKernel int
}

// NewColorClassifier returns a classifier using DefaultPalette and a 5x5
// median filter.
func NewColorClassifier() *ColorClassifier {
	return &ColorClassifier{
		palette:      DefaultPalette(),
		medianKernel: 5,
	}
}

// SupportedColors lists the palette names in scoring order.
func (c *ColorClassifier) SupportedColors() []string {
	names := make([]string, len(c.palette))
	for i, d := range c.palette {
		names[i] = d.Name
	}
	return names
}

// AddColor returns a copy of c with an extra palette entry. An existing entry
// with the same name (case-insensitive) is replaced, keeping its position.
// The receiver is left unchanged.
func (c *ColorClassifier) AddColor(name string, r HSVRange, rgb [3]uint8) *ColorClassifier {
	palette := make([]ColorDef, 0, len(c.palette)+1)
	def := ColorDef{Name: strings.ToLower(name), Ranges: []HSVRange{r}, RGB: rgb}
	replaced := false
	for _, d := range c.palette {
		if strings.EqualFold(d.Name, name) {
			palette = append(palette, def)
			replaced = true
			continue
		}
		palette = append(palette, d)
	}
	if !replaced {
		palette = append(palette, def)
	}
	return &ColorClassifier{palette: palette, medianKernel: c.medianKernel}
}

// Classify names the color of the region of frame inside box.
//
// The box is clipped to the frame. An empty crop yields unknown mid-gray at
// confidence 0. The median filter runs on the RGB crop before HSV conversion.
func (c *ColorClassifier) Classify(frame image.Image, box model.BoundingBox) model.Color {
	if frame == nil {
		return unknownColor()
	}
	crop := imaging.CropClipped(frame, box.Rect())
	if crop == nil {
		return unknownColor()
	}
	crop = imaging.MedianBlur(crop, c.medianKernel)
	return c.ClassifyHSV(imaging.ToHSV(crop))
}

// ClassifyHSV names the color of an HSV pixel buffer. An empty buffer yields
// unknown mid-gray at confidence 0.
func (c *ColorClassifier) ClassifyHSV(px *imaging.HSVImage) model.Color {
	total := px.Len()
	if total == 0 {
		return unknownColor()
	}

	hist := make([]float64, hueBins)
	sat := make([]float64, total)
	val := make([]float64, total)
	for i, p := range px.Pix {
		hist[int(p.H)%hueBins]++
		sat[i] = float64(p.S)
		val[i] = float64(p.V)
	}
	dominantHue := floats.MaxIdx(hist)
	meanS := stat.Mean(sat, nil)
	meanV := stat.Mean(val, nil)

	bestName, best := Unknown, 0.0
	for _, def := range c.palette {
		count := 0
		for _, p := range px.Pix {
			for _, r := range def.Ranges {
				if r.Contains(p) {
					count++
					break
				}
			}
		}
		conf := float64(count) / float64(total)

		for _, r := range def.Ranges {
			if r.containsHue(dominantHue) {
				conf *= dominantHueBoost
				break
			}
		}
		conf = adjustForLighting(def, conf, meanS, meanV)

		if conf > best {
			best, bestName = conf, def.Name
		}
	}

	if best < fallbackThreshold {
		var hue []float64
		for _, p := range px.Pix {
			hue = append(hue, float64(p.H))
		}
		bestName = fallbackName(stat.Mean(hue, nil), meanS, meanV)
		best = fallbackConfidence
	}

	rgb := c.rgb(bestName)
	return model.Color{
		R:          rgb[0],
		G:          rgb[1],
		B:          rgb[2],
		Name:       bestName,
		Confidence: math.Min(best, 1),
	}
}

func adjustForLighting(def ColorDef, conf, meanS, meanV float64) float64 {
	if meanS > 50 && meanV > 50 {
		conf *= vividBoost
	}
	if meanS < 30 {
		if def.achromatic() {
			conf *= achromaticBoost
		} else {
			conf *= chromaticPenalty
		}
	}
	if meanV < 50 {
		if def.Name == Black {
			conf *= extremeBoost
		} else {
			conf *= extremePenalty
		}
	}
	if meanV > 200 {
		if def.Name == White {
			conf *= extremeBoost
		} else {
			conf *= extremePenalty
		}
	}
	return conf
}

// fallbackName maps mean HSV values onto fixed bands: low saturation picks
// black, white or gray by value; anything else is named by hue alone.
func fallbackName(h, s, v float64) string {
	if s < 30 {
		switch {
		case v < 50:
			return Black
		case v > 200:
			return White
		default:
			return Gray
		}
	}
	if h >= 170 {
		return "red"
	}
	for _, b := range fallbackHueBands {
		if h <= b.max {
			return b.name
		}
	}
	return "pink"
}

func (c *ColorClassifier) rgb(name string) [3]uint8 {
	for _, d := range c.palette {
		if d.Name == name {
			return d.RGB
		}
	}
	return unknownRGB
}

func unknownColor() model.Color {
	return model.Color{R: 128, G: 128, B: 128, Name: Unknown}
}
