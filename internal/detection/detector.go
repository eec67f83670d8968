package detection

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ironsheep/shape-vision/internal/classify"
	"github.com/ironsheep/shape-vision/internal/contour"
	"github.com/ironsheep/shape-vision/internal/imaging"
	"github.com/ironsheep/shape-vision/internal/model"
)

// Options limit a single detection call. Zero values disable each limit.
type Options struct {
	// MaxObjects keeps only the first N regions, in detection order, before
	// classification.
	MaxObjects int `json:"max_objects" yaml:"max_objects"`

	// MinColorConfidence drops objects whose color confidence is below it.
	MinColorConfidence float64 `json:"confidence_threshold" yaml:"confidence_threshold"`

	// MaxWidth downscales wider frames before detection. Boxes are reported
	// in the downscaled frame's coordinates.
	MaxWidth int `json:"max_width" yaml:"max_width"`
}

// Validate reports the first out-of-range limit.
func (o Options) Validate() error {
	switch {
	case o.MaxObjects < 0:
		return fmt.Errorf("%w: max_objects must not be negative, got %d", ErrInvalidParams, o.MaxObjects)
	case o.MinColorConfidence < 0 || o.MinColorConfidence > 1:
		return fmt.Errorf("%w: confidence_threshold must be in 0-1, got %v", ErrInvalidParams, o.MinColorConfidence)
	case o.MaxWidth < 0:
		return fmt.Errorf("%w: max_width must not be negative, got %d", ErrInvalidParams, o.MaxWidth)
	}
	return nil
}

// MobileOptions returns the limits the HTTP backend applies to phone frames.
func MobileOptions() Options {
	return Options{MaxObjects: 10, MinColorConfidence: 0.3, MaxWidth: 640}
}

// Detector runs the full pipeline: preprocess, extract, assemble, classify.
//
// A Detector is safe for concurrent use. Parameter updates apply to calls
// that start after the update returns.
type Detector struct {
	mu     sync.RWMutex
	params Params
	colors *classify.ColorClassifier
	shapes *classify.ShapeClassifier
}

// NewDetector creates a detector after validating p.
func NewDetector(p Params) (*Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		params: p,
		colors: classify.NewColorClassifier(),
		shapes: classify.NewShapeClassifier(),
	}, nil
}

// Params returns the current parameters.
func (d *Detector) Params() Params {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.params
}

// Update applies u and returns the resulting parameters. When the result is
// invalid nothing changes and the validation error is returned.
func (d *Detector) Update(u ParamsUpdate) (Params, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := u.Apply(d.params)
	if err := next.Validate(); err != nil {
		return d.params, err
	}
	d.params = next
	return next, nil
}

// AddColor extends the color palette used by later calls.
func (d *Detector) AddColor(name string, r classify.HSVRange, rgb [3]uint8) {
	d.mu.Lock()
	d.colors = d.colors.AddColor(name, r, rgb)
	d.mu.Unlock()
}

// SupportedColors lists the color names the detector can assign.
func (d *Detector) SupportedColors() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.colors.SupportedColors()
}

// SupportedShapes lists the shape names the detector can assign.
func (d *Detector) SupportedShapes() []string {
	return d.shapes.SupportedShapes()
}

func (d *Detector) snapshot() (Params, *classify.ColorClassifier) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.params, d.colors
}

// Mask returns the binary foreground mask the detector would extract regions
// from.
func (d *Detector) Mask(frame image.Image) *image.Gray {
	p, _ := d.snapshot()
	return imaging.Preprocess(frame, p.preprocessOptions())
}

// DetectObjects finds foreground regions in frame without classifying them.
// A nil or empty frame yields no objects.
func (d *Detector) DetectObjects(frame image.Image) []model.DetectedObject {
	p, _ := d.snapshot()
	return detectObjects(frame, p)
}

func detectObjects(frame image.Image, p Params) []model.DetectedObject {
	if frame == nil || frame.Bounds().Empty() {
		return nil
	}
	mask := imaging.Preprocess(frame, p.preprocessOptions())
	return Assemble(contour.Extract(mask, p.MinContourArea, p.MaxContourArea))
}

// Classify returns copies of objs with color and shape filled in, in the same
// order. Objects are classified concurrently; frame is only read.
func (d *Detector) Classify(frame image.Image, objs []model.DetectedObject) []model.DetectedObject {
	p, colors := d.snapshot()
	return classifyAll(frame, objs, colors, d.shapes, p.Workers)
}

// classifyAll fans objects out to a fixed pool of workers. Each result is
// written back at its input index, so output order never depends on
// scheduling.
func classifyAll(frame image.Image, objs []model.DetectedObject, colors *classify.ColorClassifier, shapes *classify.ShapeClassifier, workers int) []model.DetectedObject {
	out := make([]model.DetectedObject, len(objs))
	if len(objs) == 0 {
		return out
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(objs) {
		workers = len(objs)
	}

	tasks := make(chan int, len(objs))
	for i := range objs {
		tasks <- i
	}
	close(tasks)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				o := objs[i]
				out[i] = o.
					WithColor(colors.Classify(frame, o.Box)).
					WithShape(shapes.Classify(o.Boundary, o.Box))
			}
		}()
	}
	wg.Wait()
	return out
}

// ClassifyColor classifies the color inside box without running detection.
func (d *Detector) ClassifyColor(frame image.Image, box model.BoundingBox) model.Color {
	_, colors := d.snapshot()
	return colors.Classify(frame, box)
}

// ClassifyRegion detects objects inside box only and returns the largest one,
// classified, in frame coordinates. It reports false when box holds no
// region within the area limits.
func (d *Detector) ClassifyRegion(frame image.Image, box model.BoundingBox) (model.DetectedObject, bool) {
	if frame == nil {
		return model.DetectedObject{}, false
	}
	clipped := box.Rect().Intersect(frame.Bounds())
	crop := imaging.CropClipped(frame, clipped)
	if crop == nil {
		return model.DetectedObject{}, false
	}
	p, colors := d.snapshot()

	objs := detectObjects(crop, p)
	if len(objs) == 0 {
		return model.DetectedObject{}, false
	}
	best := 0
	for i, o := range objs {
		if o.Area() > objs[best].Area() {
			best = i
		}
	}

	o := offsetObject(objs[best], clipped.Min)
	o = o.WithColor(colors.Classify(frame, o.Box)).WithShape(d.shapes.Classify(o.Boundary, o.Box))
	return o, true
}

func offsetObject(o model.DetectedObject, by image.Point) model.DetectedObject {
	o.Box.X += by.X
	o.Box.Y += by.Y
	boundary := make(model.Boundary, len(o.Boundary))
	for i, pt := range o.Boundary {
		boundary[i] = pt.Add(by)
	}
	o.Boundary = boundary
	return o
}

// Detect runs the whole pipeline on frame and returns a timestamped result.
// A nil or empty frame yields an empty result.
func (d *Detector) Detect(frame image.Image) model.DetectionResult {
	res, _ := d.DetectContext(context.Background(), frame, Options{})
	return res
}

// DetectContext is Detect with per-call limits. ctx is checked between
// pipeline stages only; a stage that has started runs to completion.
//
// When opts.MinColorConfidence drops objects, the survivors keep the id of
// their original position so clients can correlate frames.
func (d *Detector) DetectContext(ctx context.Context, frame image.Image, opts Options) (model.DetectionResult, error) {
	res := model.DetectionResult{Timestamp: time.Now(), Frame: frame}
	if frame == nil || frame.Bounds().Empty() {
		return res, nil
	}
	p, colors := d.snapshot()

	if opts.MaxWidth > 0 {
		frame = imaging.ResizeToWidth(frame, opts.MaxWidth)
		res.Frame = frame
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("detection canceled: %w", err)
	}

	objs := detectObjects(frame, p)
	if opts.MaxObjects > 0 && len(objs) > opts.MaxObjects {
		objs = objs[:opts.MaxObjects]
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("detection canceled: %w", err)
	}

	objs = classifyAll(frame, objs, colors, d.shapes, p.Workers)

	if opts.MinColorConfidence > 0 {
		kept := objs[:0]
		for i, o := range objs {
			if o.Color != nil && o.Color.Confidence >= opts.MinColorConfidence {
				kept = append(kept, o.WithID(i))
			}
		}
		objs = kept
	}

	res.Objects = objs
	return res, nil
}
