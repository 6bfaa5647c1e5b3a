package server

import (
	"net/http"
	"strconv"

	"interviewai/pkg/domain"
)

// The /api/analytics endpoints wrap their payloads in a
// {success, data} envelope.
func writeAnalytics(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func (s *Server) handleAnalyticsOverview(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	performance, err := s.app.OverallPerformance(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeAnalytics(w, performance)
}

func (s *Server) handleAnalyticsStrengthsWeaknesses(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	analysis, err := s.app.StrengthsAndWeaknesses(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeAnalytics(w, analysis)
}

func (s *Server) handleAnalyticsScoresByRole(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	groups, err := s.app.AverageScoresByRoleAndLevel(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeAnalytics(w, groups)
}

func (s *Server) handleAnalyticsTotalAttempts(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	attempts, err := s.app.TotalAttemptsByType(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeAnalytics(w, attempts)
}

func (s *Server) handleAnalyticsScoresTrend(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	trend, err := s.app.ScoresTrend(identity, limit)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeAnalytics(w, trend)
}

func (s *Server) handleAnalyticsDashboard(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	dashboard, err := s.app.Dashboard(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeAnalytics(w, dashboard)
}
