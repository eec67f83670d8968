package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ironsheep/shape-vision/internal/imaging"
	"github.com/ironsheep/shape-vision/internal/model"
)

const writeWait = 10 * time.Second

type streamRequest struct {
	Image     string          `json:"image"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

type streamResponse struct {
	Type      string             `json:"type"`
	Data      []model.ObjectJSON `json:"data"`
	Message   string             `json:"message,omitempty"`
	Timestamp json.RawMessage    `json:"timestamp,omitempty"`
}

// handleStream runs one WebSocket session. The read loop only queues frames;
// a single goroutine detects and writes responses, so writes never overlap.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	s.metrics.StreamOpened()
	defer s.metrics.StreamClosed()
	if s.debug {
		log.Printf("Stream client connected: %s", r.RemoteAddr)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames := make(chan []byte, s.queueSize)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.processStream(ctx, conn, frames)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Stream client disconnected with error: %v", err)
			}
			break
		}
		s.metrics.FramesReceived.Add(1)
		select {
		case frames <- msg:
		default:
			s.metrics.FramesDropped.Add(1)
			if s.debug {
				log.Printf("Stream queue full, dropping frame")
			}
		}
	}

	close(frames)
	cancel()
	<-done
}

func (s *Server) processStream(ctx context.Context, conn *websocket.Conn, frames <-chan []byte) {
	for msg := range frames {
		resp := s.streamFrame(ctx, msg)
		if resp == nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("Stream write error: %v", err)
			// Unblocks the read loop.
			conn.Close()
			return
		}
	}
}

// streamFrame handles one queued message. It returns nil when the frame was
// dropped or the session is ending.
func (s *Server) streamFrame(ctx context.Context, msg []byte) *streamResponse {
	var req streamRequest
	if err := json.Unmarshal(msg, &req); err != nil || req.Image == "" {
		s.metrics.DecodeErrors.Add(1)
		return &streamResponse{Type: "error", Data: []model.ObjectJSON{}, Message: "Invalid message"}
	}

	frame, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		s.metrics.DecodeErrors.Add(1)
		return &streamResponse{Type: "error", Data: []model.ObjectJSON{}, Message: "Invalid image format", Timestamp: req.Timestamp}
	}

	res, err := s.detect(ctx, frame)
	switch {
	case errors.Is(err, ErrBusy), ctx.Err() != nil:
		return nil
	case err != nil:
		return &streamResponse{Type: "error", Data: []model.ObjectJSON{}, Message: err.Error(), Timestamp: req.Timestamp}
	}

	return &streamResponse{
		Type:      "objects",
		Data:      model.Project(res).Objects,
		Timestamp: req.Timestamp,
	}
}
