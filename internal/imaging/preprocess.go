package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// PreprocessOptions controls how a frame is turned into a binary mask.
type PreprocessOptions struct {
	// BlurKernelSize is the Gaussian kernel size. Even values are rounded up
	// to the next odd value; 1 or less disables blurring.
	BlurKernelSize int

	// MorphKernelSize is the elliptical kernel size of the opening. Even values
	// are rounded up; 1 or less disables the opening.
	MorphKernelSize int

	// Threshold is the fixed global binarization level. Pixels strictly above
	// it become foreground candidates (255).
	Threshold uint8
}

// DefaultPreprocessOptions returns the options used by the desktop pipeline.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		BlurKernelSize:  5,
		MorphKernelSize: 3,
		Threshold:       127,
	}
}

// OddKernel rounds an even kernel size up to the next odd value.
func OddKernel(size int) int {
	if size%2 == 0 {
		return size + 1
	}
	return size
}

// Preprocess converts a color frame into a binary foreground mask.
//
// The returned mask has the same bounds as the frame and contains only the
// values 0 (background) and 255 (foreground).
//
// # Algorithm
//
//  1. Grayscale conversion using ITU-R BT.601 luma weights
//  2. Separable Gaussian blur with the configured odd kernel size and the
//     sigma OpenCV derives from it, 0.3*((k-1)/2-1)+0.8
//  3. Fixed global threshold (not adaptive; low-contrast scenes will suffer)
//  4. Polarity correction: if more than half the mask is on, the background
//     was captured as foreground, so the mask is inverted
//  5. Morphological opening (erode, then dilate) with an elliptical
//     structuring element to remove speckles; the 3x3 ellipse is a cross
//
// A nil or empty frame yields an empty mask.
func Preprocess(frame image.Image, opts PreprocessOptions) *image.Gray {
	if frame == nil || frame.Bounds().Empty() {
		return image.NewGray(image.Rectangle{})
	}
	bounds := frame.Bounds()

	var working image.Image = imaging.Grayscale(frame)

	if k := OddKernel(opts.BlurKernelSize); k > 1 {
		g := GaussianKernel(k)
		o := &convolution.Options{Bias: 0.5}
		working = convolution.Convolve(convolution.Convolve(working, g, o), g.Transposed(), o)
	}

	// segment.Threshold keeps values >= level, so shift by one to get the
	// strictly-greater behaviour.
	level := uint8(255)
	if opts.Threshold < 255 {
		level = opts.Threshold + 1
	}
	mask := toMask(segment.Threshold(working, level), bounds)

	if MeanValue(mask) > 127 {
		mask = toMask(effect.Invert(mask), bounds)
	}

	if m := OddKernel(opts.MorphKernelSize); m > 1 {
		mask = dilate(erode(mask, m), m)
	}

	return mask
}

// GaussianKernel returns the normalized one-dimensional Gaussian of odd size
// k, with sigma chosen from k the way OpenCV does when none is given.
func GaussianKernel(k int) *convolution.Kernel {
	sigma := 0.3*(float64(k-1)/2-1) + 0.8
	g := convolution.NewKernel(k, 1)
	sum := 0.0
	for i := range g.Matrix {
		x := float64(i - k/2)
		g.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += g.Matrix[i]
	}
	for i := range g.Matrix {
		g.Matrix[i] /= sum
	}
	return g
}

// EllipseKernel returns the m x m elliptical structuring element as a 0/1
// kernel, laid out like OpenCV's MORPH_ELLIPSE.
func EllipseKernel(m int) *convolution.Kernel {
	k := convolution.NewKernel(m, m)
	r := m / 2
	for y := 0; y < m; y++ {
		dy := float64(y - r)
		dx := int(math.Round(float64(r) * math.Sqrt(1-dy*dy/float64(r*r))))
		for x := max(r-dx, 0); x <= min(r+dx, m-1); x++ {
			k.Matrix[y*m+x] = 1
		}
	}
	return k
}

// erode keeps a pixel only when every pixel under the ellipse is on. The
// kernel sums 255 per covered on-pixel; the bias leaves 255 only for a full
// count and clamps everything else to 0.
func erode(mask *image.Gray, m int) *image.Gray {
	k := EllipseKernel(m)
	n := k.Absum()
	out := convolution.Convolve(mask, k, &convolution.Options{Bias: -(n - 1) * 255, KeepAlpha: true})
	return toMask(out, mask.Bounds())
}

// dilate turns a pixel on when any pixel under the ellipse is on.
func dilate(mask *image.Gray, m int) *image.Gray {
	out := convolution.Convolve(mask, EllipseKernel(m), &convolution.Options{KeepAlpha: true})
	return toMask(out, mask.Bounds())
}

// MeanValue returns the mean pixel value of a grayscale image.
func MeanValue(g *image.Gray) float64 {
	b := g.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var sum int
	for y := 0; y < b.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		for _, v := range row {
			sum += int(v)
		}
	}
	return float64(sum) / float64(n)
}

// toMask binarizes any image into a 0/255 mask placed at bounds.
//
// The bild filters return images anchored at the origin, so pixels are read
// relative to the source's own bounds.
func toMask(src image.Image, bounds image.Rectangle) *image.Gray {
	dst := image.NewGray(bounds)
	sb := src.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, _, _, _ := src.At(sb.Min.X+x, sb.Min.Y+y).RGBA()
			if r>>8 > 127 {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}
