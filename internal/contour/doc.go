// Package contour finds the outer boundaries of foreground regions in a
// binary mask and provides the polygon geometry used to classify them.
//
// # Algorithm Overview
//
//  1. Component labelling: foreground pixels are grouped into 8-connected
//     components, discovered in raster order.
//  2. External filter: the background is flooded (4-connected) from the image
//     border. A component whose top-left pixel sits under a background pixel
//     the flood never reached lies inside another component's hole and is
//     dropped, so only outermost boundaries are reported.
//  3. Border following: each remaining component is traced clockwise with
//     Moore-neighbour tracing and Jacob's stopping criterion.
//  4. Chain compression: straight runs are reduced to their end points.
//  5. Area filter: shoelace area must lie in [minArea, maxArea].
//
// Boundary points are pixel centers, so a filled 100x100 square traces to a
// polygon with area 99*99 and a 100x100 bounding box.
package contour
