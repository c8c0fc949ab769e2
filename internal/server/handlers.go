// File: internal/server/handlers.go
package server

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bigid-apps/quickstart/internal/execution"
)

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", App: s.controller.App().Name})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, s.controller.App().Manifest)
}

// handleExecute runs one action synchronously and answers with its envelope.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	ec, err := execution.Decode(r.Body)
	if err != nil {
		s.logger.Warn("Rejected execute request.", zap.Error(err))
		s.respondWithJSON(w, http.StatusBadRequest, execution.Failed("", err.Error()))
		return
	}

	res := s.controller.Execute(r.Context(), ec)
	s.respondWithJSON(w, res.StatusCode, res.Response)
}

func (s *Server) handleAsset(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(s.cfg.ResourcesDir, name))
	}
}

// handleLogs returns the whole log file as plain text.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.logFile == "" {
		http.Error(w, "No log file is configured.", http.StatusNotFound)
		return
	}
	f, err := os.Open(s.logFile)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "Log file does not exist yet.", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Failed to open log file.", zap.String("path", s.logFile), zap.Error(err))
		http.Error(w, "Failed to read log file.", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("Failed to send log file.", zap.Error(err))
	}
}

func (s *Server) respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}
