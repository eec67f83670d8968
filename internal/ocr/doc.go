// Package ocr reads printed labels on detected objects using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). A shape
// carrying a printed word, such as a sign or a box label, can be read by
// cropping its bounding box and running OCR on the crop only.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-default data directory can be set through Reader.TessdataPrefix
// (SHAPES_TESSDATA_PREFIX or TESSDATA_PREFIX in the server configuration).
//
// # Coordinates
//
// Word boxes returned by ReadObjectText are translated back to frame
// coordinates, so they can be drawn over the original image.
//
// If word-level box extraction fails, the full text is still returned with an
// empty Regions slice.
package ocr
