// Package classify assigns a color name and a shape name to detected regions.
//
// Both classifiers are deterministic and stateless: classifying the same
// region twice yields identical results, and a classifier value can be shared
// between goroutines.
//
// # Color
//
// The color classifier crops the region's bounding box, median-filters it,
// converts it to 8-bit HSV and scores every palette entry by the fraction of
// pixels inside its range. Scores are then adjusted by the dominant hue and by
// the crop's mean saturation and brightness. When no entry scores 0.1 or more
// the crop's mean HSV is mapped onto fixed bands instead, at confidence 0.5.
//
// # Shape
//
// The shape classifier simplifies the boundary with Douglas-Peucker at 2% of
// its perimeter and decides from the vertex count, circularity and bounding
// box ratios. Regions under 100 square pixels are reported as unknown.
package classify
