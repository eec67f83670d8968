package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/ironsheep/shape-vision/internal/detection"
	"github.com/ironsheep/shape-vision/internal/imaging"
	"github.com/ironsheep/shape-vision/internal/model"
	"github.com/ironsheep/shape-vision/internal/navigation"
)

// DetectionResponse is returned by both detect endpoints.
type DetectionResponse struct {
	Success    bool                 `json:"success"`
	Objects    []model.ObjectJSON   `json:"objects"`
	Message    string               `json:"message"`
	Width      int                  `json:"width,omitempty"`
	Height     int                  `json:"height,omitempty"`
	Navigation *navigation.Analysis `json:"navigation,omitempty"`
}

// ConfigResponse describes the detection settings in effect.
type ConfigResponse struct {
	MaxObjects          int              `json:"max_objects"`
	ConfidenceThreshold float64          `json:"confidence_threshold"`
	MaxWidth            int              `json:"max_width"`
	DetectorParams      detection.Params `json:"detector_params"`
	SupportedColors     []string         `json:"supported_colors"`
	SupportedShapes     []string         `json:"supported_shapes"`
}

// ConfigUpdate names the settings to change; absent fields are left alone.
type ConfigUpdate struct {
	MaxObjects          *int                    `json:"max_objects,omitempty"`
	ConfidenceThreshold *float64                `json:"confidence_threshold,omitempty"`
	MaxWidth            *int                    `json:"max_width,omitempty"`
	DetectorParams      *detection.ParamsUpdate `json:"detector_params,omitempty"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Shape vision backend is running!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"models_loaded": map[string]bool{
			"object_detector":  s.detector != nil,
			"color_classifier": s.detector != nil,
			"shape_classifier": s.detector != nil,
		},
		"queue": map[string]int{
			"size":   s.queueSize,
			"in_use": len(s.slots),
		},
	})
}

// handleDetectUpload accepts a multipart form with a "file" field, or the
// encoded image as the raw request body.
func (s *Server) handleDetectUpload(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	s.metrics.FramesReceived.Add(1)

	var (
		frame image.Image
		err   error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			s.metrics.DecodeErrors.Add(1)
			writeError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()
		frame, err = imaging.Decode(file)
	} else {
		frame, err = imaging.Decode(r.Body)
	}
	if err != nil {
		s.metrics.DecodeErrors.Add(1)
		writeError(w, http.StatusBadRequest, "Invalid image format")
		return
	}

	s.respondDetection(w, r, frame)
}

func (s *Server) handleDetectBase64(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	s.metrics.FramesReceived.Add(1)

	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.DecodeErrors.Add(1)
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Image == "" {
		s.metrics.DecodeErrors.Add(1)
		writeError(w, http.StatusBadRequest, "Missing image field")
		return
	}
	frame, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		s.metrics.DecodeErrors.Add(1)
		writeError(w, http.StatusBadRequest, "Invalid image format")
		return
	}

	s.respondDetection(w, r, frame)
}

func (s *Server) respondDetection(w http.ResponseWriter, r *http.Request, frame image.Image) {
	res, err := s.detect(r.Context(), frame)
	if errors.Is(err, ErrBusy) {
		writeError(w, http.StatusServiceUnavailable, "Detection queue full, retry later")
		return
	}
	if err != nil {
		log.Printf("Object detection error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	projected := model.Project(res)
	resp := DetectionResponse{
		Success: true,
		Objects: projected.Objects,
		Message: fmt.Sprintf("Detected %d objects", projected.Count),
		Width:   projected.Width,
		Height:  projected.Height,
	}
	if navigate, _ := strconv.ParseBool(r.URL.Query().Get("navigate")); navigate {
		resp.Navigation = navigation.Analyze(res, projected.Width, projected.Height)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		s.updateConfig(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.currentConfig())
}

func (s *Server) currentConfig() ConfigResponse {
	limits := s.Limits()
	return ConfigResponse{
		MaxObjects:          limits.MaxObjects,
		ConfidenceThreshold: limits.MinColorConfidence,
		MaxWidth:            limits.MaxWidth,
		DetectorParams:      s.detector.Params(),
		SupportedColors:     s.detector.SupportedColors(),
		SupportedShapes:     s.detector.SupportedShapes(),
	}
}

func (s *Server) updateConfig(w http.ResponseWriter, r *http.Request) {
	var u ConfigUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: "Invalid JSON body"})
		return
	}

	limits := s.Limits()
	if u.MaxObjects != nil {
		limits.MaxObjects = *u.MaxObjects
	}
	if u.ConfidenceThreshold != nil {
		limits.MinColorConfidence = *u.ConfidenceThreshold
	}
	if u.MaxWidth != nil {
		limits.MaxWidth = *u.MaxWidth
	}
	if err := limits.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Message: err.Error()})
		return
	}

	if u.DetectorParams != nil && !u.DetectorParams.IsEmpty() {
		if _, err := s.detector.Update(*u.DetectorParams); err != nil {
			writeJSON(w, http.StatusBadRequest, statusResponse{Message: err.Error()})
			return
		}
	}
	s.setLimits(limits)

	if s.debug {
		log.Printf("Configuration updated: %+v", limits)
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Configuration updated"})
}
