package store

import (
	"time"

	"interviewai/pkg/domain"
)

// Store defines persistence operations for users, interviews, and scores.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	CountUsers() (int, error)
	DeleteUser(id string) error

	// interviews
	SaveInterview(domain.Interview) error
	GetInterview(id string) (domain.Interview, bool, error)
	ListInterviewsByUser(userID string) ([]domain.Interview, error)
	ListInterviews() ([]domain.Interview, error)
	DeleteInterview(id string) error
	DeleteInterviewsByUser(userID string) error

	// scores
	SaveScore(domain.Score) error
	ListScoresByUser(userID string) ([]domain.Score, error)
	ListScoresByInterview(interviewID, userID string) ([]domain.Score, error)
}

// SessionStore issues and validates bearer credentials.
type SessionStore interface {
	NewSession(userID string, role domain.UserRole) (string, error)
	IdentityFromToken(token string) (domain.Identity, error)
}

// ResetTokenStore persists hashed, time-limited password reset tokens.
type ResetTokenStore interface {
	NewResetToken(email string, ttl time.Duration) (string, error)
	ConsumeResetToken(email, token string) (bool, error)
}
