// Package imaging holds the pixel-level stages of the shape pipeline.
//
// It turns color frames into binary foreground masks (Preprocess), converts
// pixels to the compact 8-bit HSV scale used by the color classifier, crops
// and filters object regions, and loads image files through a small cache.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles follow the
// image.Rectangle convention: Min is inclusive, Max is exclusive.
//
// # HSV Scale
//
// Hue is stored as degrees halved (0-179), saturation and value as 0-255.
// Palette ranges in the classify package are written on this scale.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is a pure
// function of its arguments and never mutates its input image.
package imaging
