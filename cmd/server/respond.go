package main

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string, details any) {
	s.writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// internalError logs err and answers with a generic 500.
func (s *server) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.log.Error(message, zap.Error(err), zap.String("path", r.URL.Path))
	s.writeError(w, http.StatusInternalServerError, message, nil)
}
