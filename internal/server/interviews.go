package server

import (
	"net/http"
	"strings"

	"interviewai/internal/app"
	"interviewai/pkg/domain"
)

type createInterviewRequest struct {
	Role      string   `json:"role"`
	Level     string   `json:"level"`
	Questions []string `json:"questions"`
}

type updateInterviewRequest struct {
	Role      *string  `json:"role"`
	Level     *string  `json:"level"`
	Questions []string `json:"questions"`
}

type submitAnswerRequest struct {
	InterviewID string `json:"interviewId"`
	Question    string `json:"question"`
	AnswerText  string `json:"answerText"`
}

func (s *Server) handleInterviews(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	switch r.Method {
	case http.MethodPost:
		var req createInterviewRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		iv, err := s.app.CreateInterview(identity, req.Role, req.Level, req.Questions)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, iv)
	case http.MethodGet:
		interviews, err := s.app.ListInterviews(identity)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"interviews": interviews})
	default:
		methodNotAllowed(w)
	}
}

// handleInterviewSubtree dispatches everything under /api/interviews/:
// the answer submission endpoint, the analytics views and the
// per-interview CRUD operations.
func (s *Server) handleInterviewSubtree(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/interviews/")
	switch {
	case rest == "answer":
		s.handleSubmitAnswer(w, r, identity)
	case rest == "analytics/scores-over-time":
		s.handleScoresOverTime(w, r, identity)
	case rest == "analytics/strengths-weaknesses":
		s.handleStrengthsWeaknesses(w, r, identity)
	case rest == "analytics/dashboard":
		s.handleDashboardChartData(w, r, identity)
	case strings.HasSuffix(rest, "/analytics"):
		id := strings.TrimSuffix(rest, "/analytics")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		s.handleInterviewAnalytics(w, r, identity, id)
	case rest != "" && !strings.Contains(rest, "/"):
		s.handleInterviewByID(w, r, identity, rest)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleInterviewByID(w http.ResponseWriter, r *http.Request, identity domain.Identity, id string) {
	switch r.Method {
	case http.MethodGet:
		iv, err := s.app.GetInterview(identity, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, iv)
	case http.MethodPut:
		var req updateInterviewRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		iv, err := s.app.UpdateInterview(identity, id, app.InterviewUpdate{
			Role:      req.Role,
			Level:     req.Level,
			Questions: req.Questions,
		})
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, iv)
	case http.MethodDelete:
		if err := s.app.DeleteInterview(identity, id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Interview deleted successfully"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req submitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	score, err := s.app.SubmitAnswer(r.Context(), identity, req.InterviewID, req.Question, req.AnswerText)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Answer evaluated and saved successfully",
		"score":   score,
	})
}

func (s *Server) handleInterviewAnalytics(w http.ResponseWriter, r *http.Request, identity domain.Identity, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	analytics, err := s.app.InterviewAnalytics(identity, id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleScoresOverTime(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	result, err := s.app.ScoresOverTime(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStrengthsWeaknesses(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	result, err := s.app.StrengthsAndWeaknesses(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDashboardChartData(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	result, err := s.app.DashboardChartData(identity)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
