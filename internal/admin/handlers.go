package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// HandleHealth reports liveness, served routes and per-outcome counts.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":         "ok",
		"routes":         s.Routes,
		"route_count":    len(s.Routes),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	}

	if s.History != nil {
		counts, err := s.History.CountByOutcome(r.Context())
		if err != nil {
			s.Logger.Error("Failed to count interactions", "error", err)
			s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch interaction counts"})
			return
		}
		response["interactions"] = counts
	}

	s.respondJSON(w, http.StatusOK, response)
}

// HandleRecent returns the latest interaction and up to ?limit= recent ones.
func (s *Server) HandleRecent(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "History not available"})
		return
	}

	limit := DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > MaxRecentLimit {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be an integer between 1 and " + strconv.Itoa(MaxRecentLimit),
			})
			return
		}
		limit = parsed
	}

	latest, err := s.History.GetLatestInteraction(r.Context())
	if err != nil {
		s.Logger.Error("Failed to get latest interaction", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch interactions"})
		return
	}

	recent, err := s.History.GetRecentInteractions(r.Context(), limit)
	if err != nil {
		s.Logger.Error("Failed to get interaction history", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch interactions"})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"latest_interaction":  latest,
		"recent_interactions": recent,
	})
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Logger.Error("Failed to encode JSON response", "error", err)
	}
}
