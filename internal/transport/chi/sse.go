package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// doneFrame is the literal terminal frame of a well-formed stream.
const doneFrame = "data: [DONE]\n\n"

// sseFrameTimeout bounds a single frame write. The deadline is pushed
// forward on every frame, so the stream as a whole outlives the server's
// WriteTimeout as long as tokens keep flowing.
const sseFrameTimeout = 30 * time.Second

// sseWriter wraps an http.ResponseWriter for SSE streaming. Every frame
// is flushed immediately so tokens reach the client as they arrive.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

// newSSEWriter creates an SSE writer and sets the stream headers.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &sseWriter{w: w, flusher: flusher, rc: http.NewResponseController(w)}, nil
}

// WriteJSON sends one JSON-payload frame.
func (s *sseWriter) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal sse payload: %w", err)
	}
	s.extendDeadline()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write sse frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteDone sends the terminal sentinel frame.
func (s *sseWriter) WriteDone() error {
	s.extendDeadline()
	if _, err := fmt.Fprint(s.w, doneFrame); err != nil {
		return fmt.Errorf("write done frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// extendDeadline replaces the server-wide write deadline with a
// per-frame one. Writers that cannot set deadlines (test recorders)
// return http.ErrNotSupported; the frame then runs under whatever
// deadline is in place.
func (s *sseWriter) extendDeadline() {
	_ = s.rc.SetWriteDeadline(time.Now().Add(sseFrameTimeout))
}
