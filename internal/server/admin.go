package server

import (
	"net/http"
	"strings"

	"interviewai/pkg/domain"
)

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	users, err := s.app.ListAllUsers()
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		detail, err := s.app.GetUserDetail(id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodDelete:
		if err := s.app.DeleteUser(id); err != nil {
			s.audit(r, "admin.delete_user", "fail", "user_id", identity.UserID, "target_id", id, "reason", err.Error())
			s.writeAppError(w, r, err)
			return
		}
		s.audit(r, "admin.delete_user", "success", "user_id", identity.UserID, "target_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"message": "User and all associated data deleted successfully"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAdminInterviews(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	interviews, err := s.app.ListAllInterviews()
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interviews)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request, _ domain.Identity) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.app.Stats()
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
