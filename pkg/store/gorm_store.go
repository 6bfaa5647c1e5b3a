package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"interviewai/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &InterviewModel{}, &ScoreModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "password_hash", "role", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all users, newest first.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// CountUsers returns the number of users.
func (s *GormStore) CountUsers() (int, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// DeleteUser removes a user record.
func (s *GormStore) DeleteUser(id string) error {
	return s.db.Delete(&UserModel{}, "id = ?", id).Error
}

// SaveInterview stores or updates an interview.
func (s *GormStore) SaveInterview(iv domain.Interview) error {
	model, err := interviewToModel(iv)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "level", "questions", "status", "overall_score", "updated_at"}),
	}).Create(&model).Error
}

// GetInterview retrieves an interview by ID.
func (s *GormStore) GetInterview(id string) (domain.Interview, bool, error) {
	var model InterviewModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Interview{}, false, nil
		}
		return domain.Interview{}, false, err
	}
	return interviewFromModel(model), true, nil
}

// ListInterviewsByUser returns a user's interviews, newest first.
func (s *GormStore) ListInterviewsByUser(userID string) ([]domain.Interview, error) {
	return s.listInterviews("user_id = ?", userID)
}

// ListInterviews returns all interviews, newest first.
func (s *GormStore) ListInterviews() ([]domain.Interview, error) {
	return s.listInterviews()
}

func (s *GormStore) listInterviews(conds ...any) ([]domain.Interview, error) {
	var models []InterviewModel
	tx := s.db.Order("created_at DESC")
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Interview, 0, len(models))
	for _, m := range models {
		res = append(res, interviewFromModel(m))
	}
	return res, nil
}

// DeleteInterview removes an interview and its scores.
func (s *GormStore) DeleteInterview(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ScoreModel{}, "interview_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&InterviewModel{}, "id = ?", id).Error
	})
}

// DeleteInterviewsByUser removes all interviews owned by a user along
// with their scores.
func (s *GormStore) DeleteInterviewsByUser(userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ScoreModel{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&InterviewModel{}, "user_id = ?", userID).Error
	})
}

// SaveScore appends a score record.
func (s *GormStore) SaveScore(sc domain.Score) error {
	model := scoreToModel(sc)
	return s.db.Create(&model).Error
}

// ListScoresByUser returns a user's scores in chronological order.
func (s *GormStore) ListScoresByUser(userID string) ([]domain.Score, error) {
	return s.listScores("user_id = ?", userID)
}

// ListScoresByInterview returns scores for one interview and user in
// chronological order.
func (s *GormStore) ListScoresByInterview(interviewID, userID string) ([]domain.Score, error) {
	return s.listScores("interview_id = ? AND user_id = ?", interviewID, userID)
}

func (s *GormStore) listScores(cond string, args ...any) ([]domain.Score, error) {
	var models []ScoreModel
	if err := s.db.Where(cond, args...).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Score, 0, len(models))
	for _, m := range models {
		res = append(res, scoreFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	role := domain.UserRole(m.Role)
	if role == "" {
		role = domain.RoleUser
	}
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         role,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func interviewToModel(iv domain.Interview) (InterviewModel, error) {
	questions, err := json.Marshal(iv.Questions)
	if err != nil {
		return InterviewModel{}, fmt.Errorf("encode questions: %w", err)
	}
	return InterviewModel{
		ID:           iv.ID,
		UserID:       iv.UserID,
		Role:         iv.Role,
		Level:        iv.Level,
		Questions:    questions,
		Status:       string(iv.Status),
		OverallScore: iv.OverallScore,
		CreatedAt:    iv.CreatedAt,
		UpdatedAt:    iv.UpdatedAt,
	}, nil
}

func interviewFromModel(m InterviewModel) domain.Interview {
	var questions []string
	if len(m.Questions) > 0 {
		_ = json.Unmarshal(m.Questions, &questions)
	}
	return domain.Interview{
		ID:           m.ID,
		UserID:       m.UserID,
		Role:         m.Role,
		Level:        m.Level,
		Questions:    questions,
		Status:       domain.InterviewStatus(m.Status),
		OverallScore: m.OverallScore,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func scoreToModel(sc domain.Score) ScoreModel {
	return ScoreModel{
		ID:           sc.ID,
		UserID:       sc.UserID,
		InterviewID:  sc.InterviewID,
		Relevance:    sc.Relevance,
		Clarity:      sc.Clarity,
		Completeness: sc.Completeness,
		Confidence:   sc.Confidence,
		Sentiment:    sc.Sentiment,
		OverallScore: sc.OverallScore,
		Feedback:     sc.Feedback,
		CreatedAt:    sc.CreatedAt,
	}
}

func scoreFromModel(m ScoreModel) domain.Score {
	return domain.Score{
		ID:           m.ID,
		UserID:       m.UserID,
		InterviewID:  m.InterviewID,
		Relevance:    m.Relevance,
		Clarity:      m.Clarity,
		Completeness: m.Completeness,
		Confidence:   m.Confidence,
		Sentiment:    m.Sentiment,
		OverallScore: m.OverallScore,
		Feedback:     m.Feedback,
		CreatedAt:    m.CreatedAt,
	}
}
