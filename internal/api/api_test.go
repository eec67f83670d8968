package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ironsheep/shape-vision/internal/config"
	"github.com/ironsheep/shape-vision/internal/detection"
	"github.com/ironsheep/shape-vision/internal/metrics"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultMobile()
	cfg.QueueSize = 4
	cfg.Detection.Workers = 2

	det, err := detection.NewDetector(cfg.Detection)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	return New(&cfg, det, metrics.New())
}

// redSquareFrame returns a white 320x240 frame with a 100x100 red square.
func redSquareFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x >= 110 && x < 210 && y >= 70 && y < 170 {
				c = color.RGBA{255, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeDetection(t *testing.T, rec *httptest.ResponseRecorder) DetectionResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp DetectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return resp
}

func assertRedSquare(t *testing.T, resp DetectionResponse) {
	t.Helper()
	if !resp.Success || resp.Message != "Detected 1 objects" {
		t.Errorf("unexpected status: success=%v message=%q", resp.Success, resp.Message)
	}
	if len(resp.Objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(resp.Objects))
	}
	obj := resp.Objects[0]
	if obj.Color == nil || obj.Color.Name != "red" {
		t.Errorf("color: got %+v, want red", obj.Color)
	}
	if obj.Shape == nil || obj.Shape.Name != "square" {
		t.Errorf("shape: got %+v, want square", obj.Shape)
	}
	if obj.ID != 0 {
		t.Errorf("id: got %d, want 0", obj.ID)
	}
}

func TestRootAndHealth(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "running") {
		t.Errorf("root: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	var health struct {
		Status       string          `json:"status"`
		ModelsLoaded map[string]bool `json:"models_loaded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid health JSON: %v", err)
	}
	if health.Status != "healthy" || !health.ModelsLoaded["object_detector"] {
		t.Errorf("health: got %+v", health)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: got %d, want 404", rec.Code)
	}
}

func TestDetectUpload_Multipart(t *testing.T) {
	h := newTestServer(t).Handler()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "frame.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	fw.Write(pngBytes(t, redSquareFrame()))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/detect/objects", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp := decodeDetection(t, do(t, h, req))
	assertRedSquare(t, resp)
	if resp.Width != 320 || resp.Height != 240 {
		t.Errorf("size: got %dx%d", resp.Width, resp.Height)
	}
	if resp.Navigation != nil {
		t.Error("navigation should be omitted unless requested")
	}
}

func TestDetectUpload_RawBody(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/detect/objects", bytes.NewReader(pngBytes(t, redSquareFrame())))
	req.Header.Set("Content-Type", "image/png")

	assertRedSquare(t, decodeDetection(t, do(t, h, req)))
}

func TestDetectUpload_Errors(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/detect/objects", strings.NewReader("not an image")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid image: got %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid image format") {
		t.Errorf("body: %s", rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/detect/objects", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: got %d, want 405", rec.Code)
	}

	if got := s.metrics.DecodeErrors.Load(); got != 1 {
		t.Errorf("DecodeErrors: got %d, want 1", got)
	}
}

func TestDetectBase64_WithNavigation(t *testing.T) {
	h := newTestServer(t).Handler()

	payload, _ := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(pngBytes(t, redSquareFrame())),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/detect/objects/base64?navigate=1", bytes.NewReader(payload))

	rec := do(t, h, req)
	resp := decodeDetection(t, rec)
	assertRedSquare(t, resp)

	var raw map[string]json.RawMessage
	json.Unmarshal(rec.Body.Bytes(), &raw)
	var nav struct {
		TotalObjects int      `json:"total_objects"`
		Advice       []string `json:"navigation_advice"`
	}
	if err := json.Unmarshal(raw["navigation"], &nav); err != nil {
		t.Fatalf("invalid navigation JSON: %v", err)
	}
	if nav.TotalObjects != 1 || len(nav.Advice) == 0 {
		t.Errorf("navigation: got %+v", nav)
	}
}

func TestDetectBase64_Errors(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing image", `{"other": "x"}`},
		{"bad base64", `{"image": "!!!"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/detect/objects/base64", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rec.Code)
			}
		})
	}
}

func TestDetect_QueueFull(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < cap(s.slots); i++ {
		s.slots <- struct{}{}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/detect/objects", bytes.NewReader(pngBytes(t, redSquareFrame())))
	rec := do(t, s.Handler(), req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503", rec.Code)
	}
	if got := s.metrics.FramesDropped.Load(); got != 1 {
		t.Errorf("FramesDropped: got %d, want 1", got)
	}
}

func TestConfig_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/config/object_detection", nil))
	var cfg ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("invalid config JSON: %v", err)
	}
	if cfg.MaxObjects != 10 || cfg.ConfidenceThreshold != 0.3 {
		t.Errorf("limits: got %d, %v", cfg.MaxObjects, cfg.ConfidenceThreshold)
	}
	if cfg.DetectorParams.MinContourArea != 300 {
		t.Errorf("min_contour_area: got %v, want 300", cfg.DetectorParams.MinContourArea)
	}
	if len(cfg.SupportedColors) != 11 {
		t.Errorf("supported colors: got %d", len(cfg.SupportedColors))
	}

	update := `{"max_objects": 3, "confidence_threshold": 0.5, "detector_params": {"min_contour_area": 800}}`
	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/config/object_detection", strings.NewReader(update)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Configuration updated") {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	if l := s.Limits(); l.MaxObjects != 3 || l.MinColorConfidence != 0.5 || l.MaxWidth != 640 {
		t.Errorf("limits after update: %+v", l)
	}
	if p := s.detector.Params(); p.MinContourArea != 800 || p.MaxContourArea != 100000 {
		t.Errorf("params after update: %+v", p)
	}
}

func TestConfig_RejectsInvalid(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	before := s.Limits()

	tests := []string{
		`{"confidence_threshold": 2}`,
		`{"max_objects": -1}`,
		`{"max_objects": 5, "detector_params": {"threshold": 999}}`,
		`not json`,
	}
	for _, body := range tests {
		rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/config/object_detection", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", body, rec.Code)
		}
	}
	if s.Limits() != before {
		t.Errorf("limits changed by rejected updates: %+v", s.Limits())
	}
	if s.detector.Params().Threshold != 127 {
		t.Errorf("threshold changed: %d", s.detector.Params().Threshold)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()
	do(t, h, httptest.NewRequest(http.MethodPost, "/api/detect/objects", bytes.NewReader(pngBytes(t, redSquareFrame()))))

	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"shapes_frames_received_total 1", "shapes_objects_detected_total 1"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func dialStream(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/objects"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStream_RoundTrip(t *testing.T) {
	s := newTestServer(t)
	conn := dialStream(t, s)

	msg := map[string]interface{}{
		"image":     base64.StdEncoding.EncodeToString(pngBytes(t, redSquareFrame())),
		"timestamp": 1712345678.5,
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var resp streamResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if resp.Type != "objects" {
		t.Errorf("type: got %q (%s)", resp.Type, resp.Message)
	}
	if len(resp.Data) != 1 || resp.Data[0].Color == nil || resp.Data[0].Color.Name != "red" {
		t.Errorf("data: got %+v", resp.Data)
	}
	if string(resp.Timestamp) != "1712345678.5" {
		t.Errorf("timestamp: got %s", resp.Timestamp)
	}
}

func TestStream_BadMessage(t *testing.T) {
	s := newTestServer(t)
	conn := dialStream(t, s)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("garbage")); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp streamResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if resp.Type != "error" {
		t.Errorf("type: got %q, want error", resp.Type)
	}

	// The session stays usable after a bad frame.
	conn.WriteJSON(map[string]string{"image": base64.StdEncoding.EncodeToString(pngBytes(t, redSquareFrame()))})
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("second ReadJSON failed: %v", err)
	}
	if resp.Type != "objects" {
		t.Errorf("second type: got %q", resp.Type)
	}
}
