// Package api serves the detection pipeline over HTTP and WebSocket for
// mobile clients.
//
// # Endpoints
//
//	GET  /                               liveness message
//	GET  /api/health                     status and loaded components
//	POST /api/detect/objects             multipart "file" field or raw image body
//	POST /api/detect/objects/base64      {"image": "<base64>"}
//	GET  /api/config/object_detection    current limits, parameters and palette
//	POST /api/config/object_detection    partial update of the same
//	GET  /ws/objects                     streaming detection
//	GET  /metrics                        Prometheus metrics
//
// Both detect endpoints accept ?navigate=1 to attach a navigation analysis of
// the frame to the response.
//
// # Streaming
//
// A WebSocket client sends text messages {"image": "<base64>", "timestamp": ...}
// and receives {"type": "objects", "data": [...], "timestamp": ...} for each
// processed frame, echoing the timestamp. Frames are queued per connection;
// when the client sends faster than detection keeps up, frames beyond the
// queue size are dropped and counted in shapes_frames_dropped_total.
//
// # Backpressure
//
// At most Config.QueueSize detections run at once across HTTP requests.
// Requests arriving while every slot is busy get 503.
package api
