package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/shape-vision/internal/imaging"
	"github.com/ironsheep/shape-vision/internal/model"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion is a recognized word with its location and confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the text read from an image or object.
type OCRResult struct {
	// FullText is all recognized text with its original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions may be empty when box extraction fails.
	Regions []TextRegion `json:"regions"`
}

// Text returns FullText with surrounding whitespace removed.
func (r *OCRResult) Text() string {
	return strings.TrimSpace(r.FullText)
}

// Reader runs Tesseract with a fixed language and data directory.
// The zero value reads English from Tesseract's default data directory.
type Reader struct {
	Language       string
	TessdataPrefix string
}

// NewReader creates a Reader. An empty language selects DefaultLanguage.
func NewReader(language, tessdataPrefix string) *Reader {
	return &Reader{Language: language, TessdataPrefix: tessdataPrefix}
}

func (r *Reader) client() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if r.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	lang := r.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

// ExtractText reads all text in the image file at path.
func (r *Reader) ExtractText(path string) (*OCRResult, error) {
	client, err := r.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImage(path); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return recognize(client)
}

// ReadObjectText reads the text inside box. The crop is clipped to the frame
// and word bounds are offset back to frame coordinates. A box entirely
// outside the frame yields an empty result.
func (r *Reader) ReadObjectText(img image.Image, box model.BoundingBox) (*OCRResult, error) {
	crop := imaging.CropClipped(img, box.Rect())
	if crop == nil {
		return &OCRResult{Regions: []TextRegion{}}, nil
	}
	origin := box.Rect().Intersect(img.Bounds()).Min

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}

	client, err := r.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	result, err := recognize(client)
	if err != nil {
		return nil, err
	}

	for i := range result.Regions {
		result.Regions[i].Bounds = result.Regions[i].Bounds.offset(origin)
	}
	return result, nil
}

// ReadObjects reads the label of every object in result, keyed by index.
// Objects with no readable text are left out.
func (r *Reader) ReadObjects(result model.DetectionResult) (map[int]*OCRResult, error) {
	out := make(map[int]*OCRResult)
	if result.Frame == nil {
		return out, nil
	}
	for i, o := range result.Objects {
		res, err := r.ReadObjectText(result.Frame, o.Box)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if res.Text() != "" {
			out[i] = res
		}
	}
	return out, nil
}

// ExtractText reads all text in the image file at path using language.
func ExtractText(path, language string) (*OCRResult, error) {
	return NewReader(language, "").ExtractText(path)
}

// ReadObjectText reads the text inside box using language.
func ReadObjectText(img image.Image, box model.BoundingBox, language string) (*OCRResult, error) {
	return NewReader(language, "").ReadObjectText(img, box)
}

func recognize(client *gosseract.Client) (*OCRResult, error) {
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &OCRResult{FullText: text, Regions: []TextRegion{}}, nil
	}

	regions := make([]TextRegion, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return &OCRResult{FullText: text, Regions: regions}, nil
}

func (b Bounds) offset(p image.Point) Bounds {
	return Bounds{X1: b.X1 + p.X, Y1: b.Y1 + p.Y, X2: b.X2 + p.X, Y2: b.Y2 + p.Y}
}
