package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/ironsheep/shape-vision/internal/classify"
	"github.com/ironsheep/shape-vision/internal/detection"
	"github.com/ironsheep/shape-vision/internal/imaging"
	"github.com/ironsheep/shape-vision/internal/model"
	"github.com/ironsheep/shape-vision/internal/navigation"
	"github.com/ironsheep/shape-vision/internal/ocr"
	"github.com/ironsheep/shape-vision/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "shapes_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Detection
	case "shapes_detect":
		return s.handleShapesDetect(args)
	case "shapes_preprocess":
		return s.handleShapesPreprocess(args)
	case "shapes_classify_color":
		return s.handleShapesClassifyColor(args)
	case "shapes_classify_shape":
		return s.handleShapesClassifyShape(args)
	case "shapes_annotate":
		return s.handleShapesAnnotate(args)
	case "shapes_navigate":
		return s.handleShapesNavigate(args)

	// OCR
	case "shapes_read_label":
		return s.handleShapesReadLabel(args)

	// Configuration
	case "shapes_get_config":
		return s.handleShapesGetConfig(args)
	case "shapes_set_config":
		return s.handleShapesSetConfig(args)
	case "shapes_add_color":
		return s.handleShapesAddColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// Limits returns the per-call detection limits applied when a tool call
// does not override them.
func (s *Server) Limits() detection.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// detect loads path and runs the full pipeline with opts.
func (s *Server) detect(path string, opts detection.Options) (model.DetectionResult, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return model.DetectionResult{}, err
	}
	return s.detector.DetectContext(context.Background(), img, opts)
}

func frameSize(res model.DetectionResult) (int, int) {
	if res.Frame == nil {
		return 0, 0
	}
	b := res.Frame.Bounds()
	return b.Dx(), b.Dy()
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Detection Handlers ===

type shapesDetectArgs struct {
	Path                string   `json:"path"`
	MaxObjects          *int     `json:"max_objects"`
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
	MaxWidth            *int     `json:"max_width"`
	Navigate            bool     `json:"navigate"`
}

type shapesDetectResult struct {
	model.ResultJSON
	Navigation *navigation.Analysis `json:"navigation,omitempty"`
}

func (s *Server) handleShapesDetect(args json.RawMessage) (interface{}, error) {
	var a shapesDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.Limits()
	if a.MaxObjects != nil {
		opts.MaxObjects = *a.MaxObjects
	}
	if a.ConfidenceThreshold != nil {
		opts.MinColorConfidence = *a.ConfidenceThreshold
	}
	if a.MaxWidth != nil {
		opts.MaxWidth = *a.MaxWidth
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res, err := s.detect(a.Path, opts)
	if err != nil {
		return nil, err
	}

	out := shapesDetectResult{ResultJSON: model.Project(res)}
	if a.Navigate {
		w, h := frameSize(res)
		out.Navigation = navigation.Analyze(res, w, h)
	}
	return out, nil
}

type shapesPreprocessResult struct {
	*imaging.EncodedImage
	ForegroundPixels int     `json:"foreground_pixels"`
	ForegroundRatio  float64 `json:"foreground_ratio"`
}

func (s *Server) handleShapesPreprocess(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	mask := s.detector.Mask(img)
	enc, err := imaging.EncodePNG(mask)
	if err != nil {
		return nil, err
	}

	on := 0
	for _, v := range mask.Pix {
		if v != 0 {
			on++
		}
	}
	out := shapesPreprocessResult{EncodedImage: enc, ForegroundPixels: on}
	if n := len(mask.Pix); n > 0 {
		out.ForegroundRatio = float64(on) / float64(n)
	}
	return out, nil
}

type regionArgs struct {
	Path string `json:"path"`
	X1   int    `json:"x1"`
	Y1   int    `json:"y1"`
	X2   int    `json:"x2"`
	Y2   int    `json:"y2"`
}

func (a regionArgs) box() (model.BoundingBox, error) {
	if a.X2 <= a.X1 || a.Y2 <= a.Y1 {
		return model.BoundingBox{}, fmt.Errorf("invalid region (%d,%d)-(%d,%d): x2 and y2 must exceed x1 and y1", a.X1, a.Y1, a.X2, a.Y2)
	}
	return model.BoundingBox{X: a.X1, Y: a.Y1, Width: a.X2 - a.X1, Height: a.Y2 - a.Y1}, nil
}

func (s *Server) loadRegion(args json.RawMessage) (image.Image, model.BoundingBox, error) {
	var a regionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, model.BoundingBox{}, err
	}
	box, err := a.box()
	if err != nil {
		return nil, box, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, box, err
	}
	return img, box, nil
}

type classifyColorResult struct {
	model.ColorJSON
	Region model.BoundingBox `json:"region"`
}

func (s *Server) handleShapesClassifyColor(args json.RawMessage) (interface{}, error) {
	img, box, err := s.loadRegion(args)
	if err != nil {
		return nil, err
	}
	c := s.detector.ClassifyColor(img, box)
	return classifyColorResult{
		ColorJSON: model.ColorJSON{Name: c.Name, Confidence: c.Confidence, RGB: c.RGB()},
		Region:    box,
	}, nil
}

type classifyShapeResult struct {
	Found  bool              `json:"found"`
	Object *model.ObjectJSON `json:"object,omitempty"`
}

func (s *Server) handleShapesClassifyShape(args json.RawMessage) (interface{}, error) {
	img, box, err := s.loadRegion(args)
	if err != nil {
		return nil, err
	}
	obj, ok := s.detector.ClassifyRegion(img, box)
	if !ok {
		return classifyShapeResult{}, nil
	}
	projected := model.ProjectObject(obj, 0)
	return classifyShapeResult{Found: true, Object: &projected}, nil
}

type shapesAnnotateArgs struct {
	Path         string `json:"path"`
	ShowBoundary bool   `json:"show_boundary"`
	ShowZones    bool   `json:"show_zones"`
	ZoneColor    string `json:"zone_color"`
}

type shapesAnnotateResult struct {
	*imaging.EncodedImage
	ObjectCount int      `json:"object_count"`
	Labels      []string `json:"labels"`
}

func (s *Server) handleShapesAnnotate(args json.RawMessage) (interface{}, error) {
	var a shapesAnnotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.detect(a.Path, s.Limits())
	if err != nil {
		return nil, err
	}

	opts := render.DefaultOptions()
	opts.ShowBoundary = a.ShowBoundary
	if a.ShowZones {
		w, h := frameSize(res)
		opts.Zones = navigation.Zones(w, h)
		if a.ZoneColor != "" {
			// Unparseable colors keep the default.
			if c, err := render.ParseHexColor(a.ZoneColor); err == nil {
				opts.ZoneColor = c
			}
		}
	}

	enc, err := imaging.EncodePNG(render.AnnotateWith(res.Frame, res, opts))
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(res.Objects))
	for i, o := range res.Objects {
		labels[i] = render.Label(o)
	}
	return shapesAnnotateResult{EncodedImage: enc, ObjectCount: res.Len(), Labels: labels}, nil
}

type shapesNavigateResult struct {
	*navigation.Analysis
	Messages []string `json:"messages"`
}

func (s *Server) handleShapesNavigate(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.detect(a.Path, s.Limits())
	if err != nil {
		return nil, err
	}
	w, h := frameSize(res)
	analysis := navigation.Analyze(res, w, h)
	return shapesNavigateResult{Analysis: analysis, Messages: analysis.Messages()}, nil
}

// === OCR Handlers ===

type shapesReadLabelArgs struct {
	Path     string `json:"path"`
	ObjectID *int   `json:"object_id"`
	Language string `json:"language"`
}

type objectLabel struct {
	ID      int              `json:"id"`
	Label   string           `json:"label"`
	Text    string           `json:"text"`
	Regions []ocr.TextRegion `json:"regions"`
}

func (s *Server) handleShapesReadLabel(args json.RawMessage) (interface{}, error) {
	var a shapesReadLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.detect(a.Path, s.Limits())
	if err != nil {
		return nil, err
	}

	reader := s.reader
	if a.Language != "" {
		reader = ocr.NewReader(a.Language, s.reader.TessdataPrefix)
	}

	labels := []objectLabel{}
	if a.ObjectID != nil {
		id := *a.ObjectID
		if id < 0 || id >= res.Len() {
			return nil, fmt.Errorf("object_id %d out of range: %d objects detected", id, res.Len())
		}
		obj := res.Objects[id]
		text, err := reader.ReadObjectText(res.Frame, obj.Box)
		if err != nil {
			return nil, err
		}
		labels = append(labels, objectLabel{ID: id, Label: render.Label(obj), Text: text.Text(), Regions: text.Regions})
		return map[string]interface{}{"objects": labels, "count": len(labels)}, nil
	}

	texts, err := reader.ReadObjects(res)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(texts))
	for id := range texts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		t := texts[id]
		labels = append(labels, objectLabel{ID: id, Label: render.Label(res.Objects[id]), Text: t.Text(), Regions: t.Regions})
	}
	return map[string]interface{}{"objects": labels, "count": len(labels)}, nil
}

// === Configuration Handlers ===

type configResult struct {
	DetectorParams  detection.Params  `json:"detector_params"`
	Limits          detection.Options `json:"limits"`
	SupportedColors []string          `json:"supported_colors"`
	SupportedShapes []string          `json:"supported_shapes"`
	OCRLanguage     string            `json:"ocr_language"`
}

func (s *Server) handleShapesGetConfig(args json.RawMessage) (interface{}, error) {
	lang := s.reader.Language
	if lang == "" {
		lang = ocr.DefaultLanguage
	}
	return configResult{
		DetectorParams:  s.detector.Params(),
		Limits:          s.Limits(),
		SupportedColors: s.detector.SupportedColors(),
		SupportedShapes: s.detector.SupportedShapes(),
		OCRLanguage:     lang,
	}, nil
}

func (s *Server) handleShapesSetConfig(args json.RawMessage) (interface{}, error) {
	var u detection.ParamsUpdate
	if err := json.Unmarshal(args, &u); err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return nil, errors.New("no parameters given")
	}
	p, err := s.detector.Update(u)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "detector_params": p}, nil
}

type shapesAddColorArgs struct {
	Name  string `json:"name"`
	Lower []int  `json:"lower"`
	Upper []int  `json:"upper"`
	RGB   []int  `json:"rgb"`
}

func toHSV(name string, v []int) (imaging.HSV, error) {
	if len(v) != 3 {
		return imaging.HSV{}, fmt.Errorf("%s must have 3 components, got %d", name, len(v))
	}
	if v[0] < 0 || v[0] > 180 || v[1] < 0 || v[1] > 255 || v[2] < 0 || v[2] > 255 {
		return imaging.HSV{}, fmt.Errorf("%s %v out of range: hue 0-180, saturation and value 0-255", name, v)
	}
	return imaging.HSV{H: uint8(v[0]), S: uint8(v[1]), V: uint8(v[2])}, nil
}

func (s *Server) handleShapesAddColor(args json.RawMessage) (interface{}, error) {
	var a shapesAddColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return nil, errors.New("name is required")
	}
	lower, err := toHSV("lower", a.Lower)
	if err != nil {
		return nil, err
	}
	upper, err := toHSV("upper", a.Upper)
	if err != nil {
		return nil, err
	}
	if len(a.RGB) != 3 {
		return nil, fmt.Errorf("rgb must have 3 components, got %d", len(a.RGB))
	}
	var rgb [3]uint8
	for i, c := range a.RGB {
		if c < 0 || c > 255 {
			return nil, fmt.Errorf("rgb component %d out of range 0-255", c)
		}
		rgb[i] = uint8(c)
	}

	s.detector.AddColor(name, classify.HSVRange{Lower: lower, Upper: upper}, rgb)
	return map[string]interface{}{"success": true, "supported_colors": s.detector.SupportedColors()}, nil
}
