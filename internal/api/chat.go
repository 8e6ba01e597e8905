package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/analytics"
)

type chatRequest struct {
	Messages []analytics.Message `json:"messages"`
}

type chatResponse struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"_metadata,omitempty"`
}

// handleChat runs the analytics pipeline for one chat transcript. Pipeline
// failures still return 200 with a structured error payload; only a
// malformed request body is a client error.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "Messages array required", "")
		return
	}

	outcome, err := s.pipeline.Run(r.Context(), req.Messages)
	if err != nil {
		log.Printf("ERROR: Chat pipeline error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Content:  outcome.Content,
		Metadata: outcome.Metadata,
	})
}
