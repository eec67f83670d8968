// Package model defines the data types shared by every stage of the shape
// detection pipeline.
//
// A frame flows through the pipeline as follows:
//
//  1. The contour extractor produces a Boundary and a BoundingBox per region.
//  2. The assembler wraps them into a DetectedObject with a detection-level
//     confidence (how clean a blob the region is).
//  3. The color and shape classifiers fill in the Color and Shape fields.
//  4. The objects are collected into a DetectionResult for the frame.
//
// # Immutability
//
// BoundingBox and Boundary values are never modified after creation. The only
// late-bound fields of a DetectedObject are Color, Shape and ID; they are set
// through WithColor, WithShape and WithID, which return an updated copy and leave
// the receiver untouched.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Bounding boxes are (X, Y, Width, Height) where Width and Height count pixels
// inclusively, so a single pixel has a 1x1 box.
package model
