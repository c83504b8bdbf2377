package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// ProgressEvent reports a pipeline stage.
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// WriteProgress sends a progress event
func (s *SSEWriter) WriteProgress(stage, message string) error {
	return s.WriteEvent("progress", ProgressEvent{Stage: stage, Message: message})
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(err error) {
	s.WriteEvent("error", errorBody(err)) //nolint:errcheck
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(id, status string) {
	s.WriteEvent("complete", map[string]string{ //nolint:errcheck
		"id":     id,
		"status": status,
	})
}
