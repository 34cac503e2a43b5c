package web

import (
	"context"
	"encoding/json"
	"net/http"
)

// handleAnalyze kicks off the two-pass analysis of the session's photo batch
// and streams per-photo progress as SSE events. Each event is a JSON
// ProgressEvent; the final event has done:true.
//
// Progress must arrive per photo, not as a single final verdict: a large batch
// takes minutes, and the loop already works one photo at a time.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	// Detach from the request context so analysis runs to completion even if
	// the client navigates away; each photo's items are committed as the loop
	// goes, so whatever finished stays.
	events, err := s.service.Analyze(context.WithoutCancel(r.Context()), sessionID)
	if err != nil {
		s.serviceError(w, err, "analyze session")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, canFlush := w.(http.Flusher)
	clientGone := false

	for ev := range events {
		if clientGone || r.Context().Err() != nil {
			// Keep draining so the pipeline finishes and persists; just stop
			// writing to a dead connection.
			clientGone = true
			continue
		}

		payload, err := json.Marshal(ev)
		if err != nil {
			s.logger.Error("failed to marshal progress event", "session_id", sessionID, "error", err)
			continue
		}
		if _, err := w.Write([]byte("data: ")); err != nil {
			clientGone = true
			continue
		}
		if _, err := w.Write(append(payload, '\n', '\n')); err != nil {
			clientGone = true
			continue
		}
		if canFlush {
			flusher.Flush()
		}
	}
}
