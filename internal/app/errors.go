package app

import "errors"

var (
	// ErrInvalidCredentials is returned when the supplied credentials do not match.
	// This message is intended to be shown to end users and should not enable account enumeration.
	ErrInvalidCredentials = errors.New("Invalid email or password")

	ErrAllFieldsRequired = errors.New("All fields are required")
	ErrUserExists        = errors.New("User already exists")
	ErrUserNotFound      = errors.New("User not found")

	ErrInterviewFieldsRequired = errors.New("Role, level, and non-empty questions array are required")
	ErrInterviewNotFound       = errors.New("Interview not found")
	ErrAccessDenied            = errors.New("Access denied")

	ErrAnswerFieldsRequired = errors.New("interviewId, question, and answerText are required")
	ErrInvalidInterviewID   = errors.New("Invalid interviewId format")
	ErrEvaluationFailed     = errors.New("Failed to evaluate answer via AI service")

	ErrResetFieldsRequired = errors.New("Missing required fields")
	ErrInvalidResetToken   = errors.New("Invalid or expired reset token")

	ErrNoScores        = errors.New("No scores found")
	ErrNoAnalytics     = errors.New("No analytics found")
	ErrNoDashboardData = errors.New("No data available for dashboard")
)
