// Package app implements the core application logic: account flows,
// interview lifecycle, answer evaluation, analytics and admin
// aggregation. Handlers stay thin; everything here is transport-free.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"interviewai/internal/evalclient"
	"interviewai/internal/util"
	"interviewai/pkg/auth"
	"interviewai/pkg/domain"
	"interviewai/pkg/store"
)

// Evaluator scores a single answer. Satisfied by *evalclient.Client.
type Evaluator interface {
	Evaluate(ctx context.Context, interviewID, question, answerText string) (domain.Evaluation, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	JWTSecret      string
	SessionTTL     time.Duration
	ResetTokenTTL  time.Duration
	EvalServiceURL string

	// Test seams. When set they take precedence over the
	// connection-string fields above.
	Store       store.Store
	Sessions    store.SessionStore
	ResetTokens store.ResetTokenStore
	Evaluator   Evaluator
}

// App is the core application service wiring together storage, sessions
// and the evaluation gateway.
type App struct {
	store         store.Store
	sessions      store.SessionStore
	resetTokens   store.ResetTokenStore
	evaluator     Evaluator
	resetTokenTTL time.Duration
}

// New constructs the application with database storage, session
// management and the evaluation service client.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.ResetTokenTTL == 0 {
		cfg.ResetTokenTTL = 15 * time.Minute
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		var err error
		sessionStore, err = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("init jwt session store: %w", err)
		}
	}

	resetTokens := cfg.ResetTokens
	if resetTokens == nil {
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redisAddr is required for the reset token store")
		}
		resetTokens = store.NewRedisResetTokenStore(cfg.RedisAddr, cfg.RedisPassword)
	}

	evaluator := cfg.Evaluator
	if evaluator == nil {
		if strings.TrimSpace(cfg.EvalServiceURL) == "" {
			return nil, fmt.Errorf("evalServiceURL is required")
		}
		evaluator = evalclient.NewClient(cfg.EvalServiceURL)
	}

	return &App{
		store:         dataStore,
		sessions:      sessionStore,
		resetTokens:   resetTokens,
		evaluator:     evaluator,
		resetTokenTTL: cfg.ResetTokenTTL,
	}, nil
}

// Register creates a new account with the default user role.
func (a *App) Register(name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)
	if name == "" || email == "" || password == "" {
		return domain.User{}, ErrAllFieldsRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, ErrUserExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return domain.User{}, "", ErrAllFieldsRequired
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID, user.Role)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// IdentityFromToken resolves the caller identity from a bearer token.
func (a *App) IdentityFromToken(token string) (domain.Identity, bool) {
	identity, err := a.sessions.IdentityFromToken(token)
	if err != nil {
		return domain.Identity{}, false
	}
	return identity, true
}

// Profile returns the authenticated user's account record.
func (a *App) Profile(identity domain.Identity) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(identity.UserID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// ForgotPassword issues a reset token when the account exists. The
// boolean reports whether a token was issued; callers must respond
// identically either way to avoid account enumeration.
func (a *App) ForgotPassword(email string) (string, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", false, nil
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return "", false, fmt.Errorf("check email: %w", err)
	}
	if !exists {
		return "", false, nil
	}
	token, err := a.resetTokens.NewResetToken(email, a.resetTokenTTL)
	if err != nil {
		return "", false, fmt.Errorf("issue reset token: %w", err)
	}
	return token, true, nil
}

// ResetPassword consumes a reset token and re-hashes the password.
func (a *App) ResetPassword(email, resetToken, newPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	newPassword = strings.TrimSpace(newPassword)
	if email == "" || resetToken == "" || newPassword == "" {
		return ErrResetFieldsRequired
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	ok, err := a.resetTokens.ConsumeResetToken(email, resetToken)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if !ok {
		return ErrInvalidResetToken
	}
	user, found, err := a.store.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if !found {
		return ErrUserNotFound
	}
	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// CreateInterview starts a new practice session owned by the caller.
func (a *App) CreateInterview(identity domain.Identity, role, level string, questions []string) (domain.Interview, error) {
	role = strings.TrimSpace(role)
	level = strings.TrimSpace(level)
	if role == "" || level == "" || len(questions) == 0 {
		return domain.Interview{}, ErrInterviewFieldsRequired
	}
	now := time.Now().UTC()
	iv := domain.Interview{
		ID:        util.NewID(),
		UserID:    identity.UserID,
		Role:      role,
		Level:     level,
		Questions: questions,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveInterview(iv); err != nil {
		return domain.Interview{}, fmt.Errorf("save interview: %w", err)
	}
	return iv, nil
}

// ListInterviews returns the caller's interviews, newest first.
func (a *App) ListInterviews(identity domain.Identity) ([]domain.Interview, error) {
	return a.store.ListInterviewsByUser(identity.UserID)
}

// GetInterview returns one interview after an ownership check.
func (a *App) GetInterview(identity domain.Identity, id string) (domain.Interview, error) {
	return a.interviewForOwner(identity, id)
}

// InterviewUpdate carries the optional fields of an interview update.
// Nil fields keep their current value.
type InterviewUpdate struct {
	Role      *string
	Level     *string
	Questions []string
}

// UpdateInterview merges the provided fields into an owned interview.
func (a *App) UpdateInterview(identity domain.Identity, id string, upd InterviewUpdate) (domain.Interview, error) {
	iv, err := a.interviewForOwner(identity, id)
	if err != nil {
		return domain.Interview{}, err
	}
	if upd.Role != nil && strings.TrimSpace(*upd.Role) != "" {
		iv.Role = strings.TrimSpace(*upd.Role)
	}
	if upd.Level != nil && strings.TrimSpace(*upd.Level) != "" {
		iv.Level = strings.TrimSpace(*upd.Level)
	}
	if len(upd.Questions) > 0 {
		iv.Questions = upd.Questions
	}
	iv.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveInterview(iv); err != nil {
		return domain.Interview{}, fmt.Errorf("save interview: %w", err)
	}
	return iv, nil
}

// DeleteInterview removes an owned interview and its scores.
func (a *App) DeleteInterview(identity domain.Identity, id string) error {
	if _, err := a.interviewForOwner(identity, id); err != nil {
		return err
	}
	if err := a.store.DeleteInterview(id); err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	return nil
}

// SubmitAnswer evaluates one answer through the AI service and persists
// the resulting score. The gateway is called before the ownership
// re-check, so a non-owner's submission still consumes an evaluation
// before being rejected; this mirrors the external contract.
func (a *App) SubmitAnswer(ctx context.Context, identity domain.Identity, interviewID, question, answerText string) (domain.Score, error) {
	interviewID = strings.TrimSpace(interviewID)
	if interviewID == "" || strings.TrimSpace(question) == "" || strings.TrimSpace(answerText) == "" {
		return domain.Score{}, ErrAnswerFieldsRequired
	}
	if !util.IsValidID(interviewID) {
		return domain.Score{}, ErrInvalidInterviewID
	}

	evaluation, err := a.evaluator.Evaluate(ctx, interviewID, question, answerText)
	if err != nil {
		return domain.Score{}, fmt.Errorf("%w: %v", ErrEvaluationFailed, err)
	}

	if _, err := a.interviewForOwner(identity, interviewID); err != nil {
		return domain.Score{}, err
	}

	score := domain.Score{
		ID:           util.NewID(),
		UserID:       identity.UserID,
		InterviewID:  interviewID,
		Relevance:    floatOrZero(evaluation.Relevance),
		Clarity:      floatOrZero(evaluation.Clarity),
		Completeness: floatOrZero(evaluation.Completeness),
		Confidence:   floatOrZero(evaluation.Confidence),
		Sentiment:    evaluation.Sentiment,
		OverallScore: floatOrZero(evaluation.OverallScore),
		Feedback:     evaluation.Feedback,
		CreatedAt:    time.Now().UTC(),
	}
	if score.Sentiment == "" {
		score.Sentiment = "neutral"
	}
	if err := a.store.SaveScore(score); err != nil {
		return domain.Score{}, fmt.Errorf("save score: %w", err)
	}
	return score, nil
}

func (a *App) interviewForOwner(identity domain.Identity, id string) (domain.Interview, error) {
	iv, ok, err := a.store.GetInterview(id)
	if err != nil {
		return domain.Interview{}, fmt.Errorf("fetch interview: %w", err)
	}
	if !ok {
		return domain.Interview{}, ErrInterviewNotFound
	}
	if iv.UserID != identity.UserID {
		return domain.Interview{}, ErrAccessDenied
	}
	return iv, nil
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
