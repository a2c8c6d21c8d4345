package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"aurora-hq/saturn/pkg/providers"
	"aurora-hq/saturn/pkg/routing"
)

// analyzeRequest is the inbound body for POST /api/analyze.
type analyzeRequest struct {
	ProviderID    string   `json:"provider_id,omitempty"`
	Context       string   `json:"context"`
	AllowedLabels []string `json:"allowed_labels,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleProviders serves GET /api/providers. The refresh=1 query
// parameter forces a rediscovery past the snapshot TTL.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	force := r.URL.Query().Get("refresh") == "1"
	views := s.router.ListProviders(r.Context(), force)
	writeJSON(w, http.StatusOK, map[string]any{"providers": views})
}

// handleAnalyze serves POST /api/analyze.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Context == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "context is required"})
		return
	}

	analysis, err := s.router.Route(r.Context(), req.ProviderID, providers.AnalysisRequest{
		Context:       req.Context,
		AllowedLabels: req.AllowedLabels,
	})
	if err != nil {
		status := routeErrorStatus(err)
		s.log.Warn("analysis request failed",
			slog.String("request_id", RequestID(r.Context())),
			slog.Int("status", status),
			slog.String("error", err.Error()))
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

// routeErrorStatus maps the router's error taxonomy onto HTTP statuses.
func routeErrorStatus(err error) int {
	var (
		noProviders *routing.NoProvidersError
		notFound    *routing.NotFoundError
		ambiguous   *routing.AmbiguousError
		exhausted   *routing.RateLimitExhaustedError
		verifyFail  *routing.VerificationFailedError
		unknownType *providers.UnknownTypeError
	)
	switch {
	case errors.As(err, &noProviders):
		return http.StatusServiceUnavailable
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &ambiguous):
		return http.StatusConflict
	case errors.As(err, &exhausted):
		return http.StatusTooManyRequests
	case errors.As(err, &verifyFail):
		return http.StatusBadGateway
	case errors.As(err, &unknownType):
		return http.StatusInternalServerError
	case providers.IsRateLimit(err):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// handleHealthz serves liveness checks.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHistory serves GET /api/history, the recent probe and routing
// observations.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"observations": []any{}})
		return
	}
	observations, err := s.history.Recent(r.Context(), 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"observations": observations})
}
