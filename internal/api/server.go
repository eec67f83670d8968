package api

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ironsheep/shape-vision/internal/config"
	"github.com/ironsheep/shape-vision/internal/detection"
	"github.com/ironsheep/shape-vision/internal/metrics"
	"github.com/ironsheep/shape-vision/internal/model"
)

// ErrBusy is returned when every detection slot is in use.
var ErrBusy = errors.New("detection queue full")

// maxUploadBytes bounds request bodies.
const maxUploadBytes = 32 << 20

// Server is the HTTP backend.
type Server struct {
	detector *detection.Detector
	metrics  *metrics.Metrics
	debug    bool

	mu     sync.RWMutex
	limits detection.Options

	queueSize int
	slots     chan struct{}

	upgrader websocket.Upgrader
}

// New creates a server for cfg. The detector is shared and may be used by
// other front ends at the same time.
func New(cfg *config.Config, det *detection.Detector, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.New()
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 1
	}
	return &Server{
		detector:  det,
		metrics:   m,
		debug:     cfg.Debug(),
		limits:    cfg.Limits,
		queueSize: queue,
		slots:     make(chan struct{}, queue),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Limits returns the per-frame limits currently applied.
func (s *Server) Limits() detection.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

func (s *Server) setLimits(o detection.Options) {
	s.mu.Lock()
	s.limits = o
	s.mu.Unlock()
}

// Handler returns the router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/detect/objects", s.handleDetectUpload)
	mux.HandleFunc("/api/detect/objects/base64", s.handleDetectBase64)
	mux.HandleFunc("/api/config/object_detection", s.handleConfig)
	mux.HandleFunc("/ws/objects", s.handleStream)
	mux.Handle("/metrics", s.metrics.Handler())

	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	if !s.debug {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

// detect runs one frame through the detector inside a queue slot. It does
// not wait for a slot: when all are busy the frame is dropped with ErrBusy.
func (s *Server) detect(ctx context.Context, frame image.Image) (model.DetectionResult, error) {
	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	default:
		s.metrics.FramesDropped.Add(1)
		return model.DetectionResult{}, ErrBusy
	}

	start := time.Now()
	res, err := s.detector.DetectContext(ctx, frame, s.Limits())
	if err != nil {
		s.metrics.DetectErrors.Add(1)
		return res, err
	}
	elapsed := time.Since(start)
	s.metrics.ObserveDetection(elapsed, res.Len())
	if s.debug {
		log.Printf("Detected %d objects in %v", res.Len(), elapsed)
	}
	return res, nil
}
