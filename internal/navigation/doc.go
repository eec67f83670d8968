// Package navigation turns detection results into spoken-style guidance for
// a person walking with a forward-facing camera.
//
// The frame is split into a 5x3 grid. Rows are distances (far at the top,
// immediate at the bottom) and columns are directions (far left to far right).
// Each object is placed by the center of its bounding box, with inclusive
// zone edges, so an object on a grid line counts for both neighbours.
//
// Analyze produces short advice strings ("Path ahead is clear") and warnings
// ("CAUTION: Obstacle directly ahead"). It is a pure consumer of detection
// results and keeps no state between frames.
package navigation
