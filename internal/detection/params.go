package detection

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/ironsheep/shape-vision/internal/contour"
	"github.com/ironsheep/shape-vision/internal/imaging"
)

// ErrInvalidParams is wrapped by every parameter validation error.
var ErrInvalidParams = errors.New("invalid detection parameters")

// Params are the tunables of the detection pipeline.
type Params struct {
	// MinContourArea and MaxContourArea bound the admitted region area in
	// square pixels, both ends inclusive.
	MinContourArea float64 `json:"min_contour_area" yaml:"min_contour_area"`
	MaxContourArea float64 `json:"max_contour_area" yaml:"max_contour_area"`

	// BlurKernelSize and MorphKernelSize are rounded up to odd values.
	BlurKernelSize  int `json:"blur_kernel_size" yaml:"blur_kernel_size"`
	MorphKernelSize int `json:"morph_kernel_size" yaml:"morph_kernel_size"`

	// Threshold is the fixed binarization level (0-255).
	Threshold int `json:"threshold" yaml:"threshold"`

	// Workers bounds the goroutines used for per-object classification.
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultParams returns the desktop pipeline defaults.
func DefaultParams() Params {
	pre := imaging.DefaultPreprocessOptions()
	return Params{
		MinContourArea:  contour.DefaultMinArea,
		MaxContourArea:  contour.DefaultMaxArea,
		BlurKernelSize:  pre.BlurKernelSize,
		MorphKernelSize: pre.MorphKernelSize,
		Threshold:       int(pre.Threshold),
		Workers:         runtime.NumCPU(),
	}
}

// MobileParams returns the defaults used by the HTTP backend, which admits
// smaller and larger regions from downscaled phone frames and blurs them
// less.
func MobileParams() Params {
	p := DefaultParams()
	p.MinContourArea = 300
	p.MaxContourArea = 100000
	p.BlurKernelSize = 3
	return p
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	switch {
	case p.MinContourArea <= 0:
		return fmt.Errorf("%w: min_contour_area must be positive, got %v", ErrInvalidParams, p.MinContourArea)
	case p.MaxContourArea <= 0:
		return fmt.Errorf("%w: max_contour_area must be positive, got %v", ErrInvalidParams, p.MaxContourArea)
	case p.MinContourArea > p.MaxContourArea:
		return fmt.Errorf("%w: min_contour_area %v exceeds max_contour_area %v", ErrInvalidParams, p.MinContourArea, p.MaxContourArea)
	case p.BlurKernelSize <= 0:
		return fmt.Errorf("%w: blur_kernel_size must be positive, got %d", ErrInvalidParams, p.BlurKernelSize)
	case p.MorphKernelSize <= 0:
		return fmt.Errorf("%w: morph_kernel_size must be positive, got %d", ErrInvalidParams, p.MorphKernelSize)
	case p.Threshold < 0 || p.Threshold > 255:
		return fmt.Errorf("%w: threshold must be in 0-255, got %d", ErrInvalidParams, p.Threshold)
	case p.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidParams, p.Workers)
	}
	return nil
}

// preprocessOptions converts the kernel and threshold fields, rounding
// kernel sizes up to odd.
func (p Params) preprocessOptions() imaging.PreprocessOptions {
	return imaging.PreprocessOptions{
		BlurKernelSize:  imaging.OddKernel(p.BlurKernelSize),
		MorphKernelSize: imaging.OddKernel(p.MorphKernelSize),
		Threshold:       uint8(p.Threshold),
	}
}

// ParamsUpdate names the fields to change; nil fields are left alone.
type ParamsUpdate struct {
	MinContourArea  *float64 `json:"min_contour_area,omitempty"`
	MaxContourArea  *float64 `json:"max_contour_area,omitempty"`
	BlurKernelSize  *int     `json:"blur_kernel_size,omitempty"`
	MorphKernelSize *int     `json:"morph_kernel_size,omitempty"`
	Threshold       *int     `json:"threshold,omitempty"`
	Workers         *int     `json:"workers,omitempty"`
}

// Apply returns p with the update's non-nil fields set. The result is not
// validated.
func (u ParamsUpdate) Apply(p Params) Params {
	if u.MinContourArea != nil {
		p.MinContourArea = *u.MinContourArea
	}
	if u.MaxContourArea != nil {
		p.MaxContourArea = *u.MaxContourArea
	}
	if u.BlurKernelSize != nil {
		p.BlurKernelSize = *u.BlurKernelSize
	}
	if u.MorphKernelSize != nil {
		p.MorphKernelSize = *u.MorphKernelSize
	}
	if u.Threshold != nil {
		p.Threshold = *u.Threshold
	}
	if u.Workers != nil {
		p.Workers = *u.Workers
	}
	return p
}

// IsEmpty reports whether the update changes nothing.
func (u ParamsUpdate) IsEmpty() bool {
	return u == ParamsUpdate{}
}
