package domain

import "time"

type InterviewStatus string

const (
	StatusPending    InterviewStatus = "pending"
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
)

type UserRole string

const (
	RoleUser        UserRole = "user"
	RoleAdmin       UserRole = "admin"
	RoleInterviewer UserRole = "interviewer"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the resolved (userID, role) pair extracted from a bearer
// token. It is threaded explicitly through every component call.
type Identity struct {
	UserID string
	Role   UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type Interview struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Role         string          `json:"role"`
	Level        string          `json:"level"`
	Questions    []string        `json:"questions"`
	Status       InterviewStatus `json:"status"`
	OverallScore *float64        `json:"overallScore"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Score is the evaluated result of one answered question. Scores are
// written once by the answer submission flow and never mutated.
type Score struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	InterviewID  string    `json:"interviewId"`
	Relevance    float64   `json:"relevance"`
	Clarity      float64   `json:"clarity"`
	Completeness float64   `json:"completeness"`
	Confidence   float64   `json:"confidence"`
	Sentiment    string    `json:"sentiment"`
	OverallScore float64   `json:"overallScore"`
	Feedback     string    `json:"feedback"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Evaluation is the gateway response. Every field is optional on the
// wire; absent numbers default to 0, sentiment to "neutral" and feedback
// to "" when the score is persisted.
type Evaluation struct {
	Relevance    *float64 `json:"relevance,omitempty"`
	Clarity      *float64 `json:"clarity,omitempty"`
	Completeness *float64 `json:"completeness,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Sentiment    string   `json:"sentiment,omitempty"`
	OverallScore *float64 `json:"overallScore,omitempty"`
	Feedback     string   `json:"feedback,omitempty"`
}
