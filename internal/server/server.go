// Package server exposes the HTTP API: auth, interviews, analytics and
// the admin surface.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"interviewai/internal/app"
	"interviewai/internal/ratelimit"
	"interviewai/internal/util"
	"interviewai/pkg/auth"
	"interviewai/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	RedisAddr      string
	RedisPassword  string
	AllowedOrigins []string

	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
	PasswordRateLimitPerMinute int
}

// Server exposes the HTTP endpoints for the backend.
type Server struct {
	app             *app.App
	mux             *http.ServeMux
	allowedOrigins  []string
	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	passwordLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	registerLimit := cfg.RegisterRateLimitPerMinute
	if registerLimit <= 0 {
		registerLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	passwordLimit := cfg.PasswordRateLimitPerMinute
	if passwordLimit <= 0 {
		passwordLimit = 10
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "interviewai:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	registerLimiter, err := newLimiter("register", registerLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	passwordLimiter, err := newLimiter("password", passwordLimit)
	if err != nil {
		return nil, err
	}

	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		allowedOrigins:  cfg.AllowedOrigins,
		registerLimiter: registerLimiter,
		loginLimiter:    loginLimiter,
		passwordLimiter: passwordLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler wrapped in the shared
// middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(s.allowedOrigins,
		util.WithRequestID(util.WithRequestLog(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/forgot-password", s.handleForgotPassword)
	s.mux.HandleFunc("/api/auth/reset-password", s.handleResetPassword)
	s.mux.Handle("/api/users/profile", s.authenticated(s.handleProfile))

	// interviews (auth required)
	s.mux.Handle("/api/interviews", s.authenticated(s.handleInterviews))
	s.mux.Handle("/api/interviews/", s.authenticated(s.handleInterviewSubtree))

	// user-scoped analytics
	s.mux.Handle("/api/analytics/overview", s.authenticated(s.handleAnalyticsOverview))
	s.mux.Handle("/api/analytics/strengths-weaknesses", s.authenticated(s.handleAnalyticsStrengthsWeaknesses))
	s.mux.Handle("/api/analytics/scores-by-role", s.authenticated(s.handleAnalyticsScoresByRole))
	s.mux.Handle("/api/analytics/total-attempts", s.authenticated(s.handleAnalyticsTotalAttempts))
	s.mux.Handle("/api/analytics/scores-trend", s.authenticated(s.handleAnalyticsScoresTrend))
	s.mux.Handle("/api/analytics/dashboard", s.authenticated(s.handleAnalyticsDashboard))

	// admin
	s.mux.Handle("/api/admin/users", s.adminOnly(s.handleAdminUsers))
	s.mux.Handle("/api/admin/users/", s.adminOnly(s.handleAdminUserByID))
	s.mux.Handle("/api/admin/interviews", s.adminOnly(s.handleAdminInterviews))
	s.mux.Handle("/api/admin/stats", s.adminOnly(s.handleAdminStats))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.Identity)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, "auth.authorize", "fail", "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		identity, ok := s.app.IdentityFromToken(token)
		if !ok {
			s.audit(r, "auth.authorize", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, identity)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
		if !identity.IsAdmin() {
			s.audit(r, "admin.authorize", "fail", "user_id", identity.UserID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r, identity)
	})
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
		return "", false
	}
	return authHeader[len(prefix):], true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeAppError maps application errors onto the HTTP taxonomy.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		util.LoggerFromContext(r.Context()).Error("request failed",
			"path", r.URL.Path, "method", r.Method, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, app.ErrAllFieldsRequired),
		errors.Is(err, app.ErrUserExists),
		errors.Is(err, app.ErrInterviewFieldsRequired),
		errors.Is(err, app.ErrAnswerFieldsRequired),
		errors.Is(err, app.ErrInvalidInterviewID),
		errors.Is(err, app.ErrResetFieldsRequired),
		errors.Is(err, auth.ErrPasswordTooShort):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrInvalidResetToken):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, app.ErrInterviewNotFound),
		errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrNoScores),
		errors.Is(err, app.ErrNoAnalytics),
		errors.Is(err, app.ErrNoDashboardData):
		return http.StatusNotFound
	case errors.Is(err, app.ErrEvaluationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
