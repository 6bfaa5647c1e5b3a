package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type InterviewModel struct {
	ID           string         `gorm:"primaryKey"`
	UserID       string         `gorm:"not null;index"`
	Role         string         `gorm:"not null"`
	Level        string         `gorm:"not null"`
	Questions    datatypes.JSON `gorm:"type:jsonb"`
	Status       string         `gorm:"not null"`
	OverallScore *float64
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type ScoreModel struct {
	ID           string  `gorm:"primaryKey"`
	UserID       string  `gorm:"not null;index"`
	InterviewID  string  `gorm:"not null;index"`
	Relevance    float64 `gorm:"not null"`
	Clarity      float64 `gorm:"not null"`
	Completeness float64 `gorm:"not null"`
	Confidence   float64 `gorm:"not null"`
	Sentiment    string  `gorm:"not null"`
	OverallScore float64 `gorm:"not null"`
	Feedback     string  `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;index"`
}
