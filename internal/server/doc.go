// Package server implements the MCP (Model Context Protocol) server for the
// shape detector.
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line, and exposes
// the detection pipeline as tools an MCP client can call on image files.
//
// # Protocol
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Detection:
//   - shapes_detect: Find colored shapes, optionally with navigation advice
//   - shapes_preprocess: Return the binary foreground mask
//   - shapes_classify_color: Name the dominant color of a region
//   - shapes_classify_shape: Detect and classify the largest shape in a region
//   - shapes_annotate: Draw boxes, labels and the zone grid on the frame
//   - shapes_navigate: Place objects in the 5x3 zone grid and give advice
//
// OCR:
//   - shapes_read_label: Read printed text inside detected objects
//
// Configuration:
//   - shapes_get_config, shapes_set_config: Inspect and tune the pipeline
//   - shapes_add_color: Extend the color palette at runtime
//
// # Image Caching
//
// Frames are cached by path and reloaded when the file's size or
// modification time changes, so a camera process may overwrite its snapshot
// between calls.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
