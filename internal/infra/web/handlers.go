package web

import (
	"encoding/json"
	"net/http"

	"groq-chat-relay/internal/domain/ports/adapter"
	"groq-chat-relay/internal/infra/logging"
)

// chatRequest is the inbound body of POST /api/chat.
type chatRequest struct {
	ID       string            `json:"id"` // session id; informational only
	Messages []adapter.Message `json:"messages"`
}

// handleChat relays one chat request as an unbroken plain-text stream.
//
// Response headers are committed only after a stream (live or synthetic)
// has been resolved, so a request where every candidate fails before any
// one succeeds still gets a clean terminal status. Once streaming has
// begun, failures arrive inline in the body; they are never converted to
// an HTTP error.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ch, err := s.relay.Stream(r.Context(), req.Messages)
	if err != nil {
		http.Error(w, "Proxy error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for chunk := range ch {
		if _, err := w.Write([]byte(chunk)); err != nil {
			// Caller went away; the relay notices via the request context.
			log.Debug().Err(err).Msg("client write failed")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
