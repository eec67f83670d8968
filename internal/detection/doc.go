// Package detection finds and labels colored shapes in camera frames.
//
// A Detector chains the pipeline stages:
//
//  1. Preprocess: grayscale, Gaussian blur, fixed threshold, polarity
//     correction and a morphological opening produce a foreground mask
//  2. Extract: outer boundaries of mask regions are traced and filtered by area
//  3. Assemble: each region becomes a DetectedObject whose detection
//     confidence is min(2 × circularity, 1)
//  4. Classify: color and shape are assigned per object by a bounded pool of
//     goroutines; results keep the extraction order
//
// # Parameters
//
// Params replaces free-form keyword updates with named fields. Updates go
// through ParamsUpdate, whose nil fields are left unchanged, and are validated
// before they take effect; an invalid update leaves the detector untouched.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Limitations
//
// The threshold is global and fixed, so scenes without strong contrast between
// objects and background produce poor masks. Objects touching each other merge
// into a single region, and objects inside another object's hole are ignored.
package detection
