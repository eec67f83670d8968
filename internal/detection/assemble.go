package detection

import (
	"math"

	"github.com/ironsheep/shape-vision/internal/contour"
	"github.com/ironsheep/shape-vision/internal/model"
)

// Assemble wraps each region in a DetectedObject, preserving order.
//
// The detection confidence is min(2 × circularity, 1), a roundness proxy for
// how clean a blob the region is. Color, shape and id are left unset.
func Assemble(regions []contour.Region) []model.DetectedObject {
	objs := make([]model.DetectedObject, len(regions))
	for i, r := range regions {
		objs[i] = model.NewDetectedObject(r.Box, r.Boundary, math.Min(2*r.Circularity(), 1))
	}
	return objs
}
