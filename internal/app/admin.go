package app

import (
	"fmt"

	"interviewai/pkg/domain"
)

// InterviewOwner is the owner summary attached to admin interview
// listings.
type InterviewOwner struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// AdminInterview is an interview with its owner attached.
type AdminInterview struct {
	domain.Interview
	User InterviewOwner `json:"user"`
}

// UserStats summarizes one user's interview activity.
type UserStats struct {
	TotalInterviews     int     `json:"totalInterviews"`
	CompletedInterviews int     `json:"completedInterviews"`
	AverageScore        float64 `json:"averageScore"`
}

// UserDetail is the admin view of a single account.
type UserDetail struct {
	User       domain.User        `json:"user"`
	Interviews []domain.Interview `json:"interviews"`
	Stats      UserStats          `json:"stats"`
}

// AdminStats is the platform-wide summary.
type AdminStats struct {
	TotalUsers          int            `json:"totalUsers"`
	TotalInterviews     int            `json:"totalInterviews"`
	CompletedInterviews int            `json:"completedInterviews"`
	AverageScore        float64        `json:"averageScore"`
	UsersByRole         map[string]int `json:"usersByRole"`
	InterviewsByStatus  map[string]int `json:"interviewsByStatus"`
}

// ListAllUsers returns every account, newest first.
func (a *App) ListAllUsers() ([]domain.User, error) {
	return a.store.ListUsers()
}

// ListAllInterviews returns every interview with its owner attached,
// newest first.
func (a *App) ListAllInterviews() ([]AdminInterview, error) {
	interviews, err := a.store.ListInterviews()
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	result := make([]AdminInterview, 0, len(interviews))
	owners := map[string]InterviewOwner{}
	for _, iv := range interviews {
		owner, seen := owners[iv.UserID]
		if !seen {
			user, ok, err := a.store.GetUserByID(iv.UserID)
			if err != nil {
				return nil, fmt.Errorf("fetch owner: %w", err)
			}
			if ok {
				owner = InterviewOwner{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
			}
			owners[iv.UserID] = owner
		}
		result = append(result, AdminInterview{Interview: iv, User: owner})
	}
	return result, nil
}

// GetUserDetail returns one account with its interviews and activity
// stats. The average covers completed interviews that carry a score.
func (a *App) GetUserDetail(id string) (UserDetail, error) {
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return UserDetail{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return UserDetail{}, ErrUserNotFound
	}
	interviews, err := a.store.ListInterviewsByUser(id)
	if err != nil {
		return UserDetail{}, fmt.Errorf("list interviews: %w", err)
	}

	stats := UserStats{TotalInterviews: len(interviews)}
	scored := 0
	total := 0.0
	for _, iv := range interviews {
		if iv.Status != domain.StatusCompleted {
			continue
		}
		stats.CompletedInterviews++
		if iv.OverallScore != nil {
			scored++
			total += *iv.OverallScore
		}
	}
	if scored > 0 {
		stats.AverageScore = round2(total / float64(scored))
	}

	return UserDetail{User: user, Interviews: interviews, Stats: stats}, nil
}

// DeleteUser removes an account with its interviews and scores. The
// two deletes are not atomic; a failure between them can orphan
// interview rows.
func (a *App) DeleteUser(id string) error {
	_, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	if err := a.store.DeleteInterviewsByUser(id); err != nil {
		return fmt.Errorf("delete interviews: %w", err)
	}
	if err := a.store.DeleteUser(id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Stats computes the platform-wide summary with role and status
// histograms. The average covers interviews that carry a score.
func (a *App) Stats() (AdminStats, error) {
	users, err := a.store.ListUsers()
	if err != nil {
		return AdminStats{}, fmt.Errorf("list users: %w", err)
	}
	interviews, err := a.store.ListInterviews()
	if err != nil {
		return AdminStats{}, fmt.Errorf("list interviews: %w", err)
	}

	stats := AdminStats{
		TotalUsers:         len(users),
		TotalInterviews:    len(interviews),
		UsersByRole:        map[string]int{},
		InterviewsByStatus: map[string]int{},
	}
	for _, u := range users {
		stats.UsersByRole[string(u.Role)]++
	}
	scored := 0
	total := 0.0
	for _, iv := range interviews {
		stats.InterviewsByStatus[string(iv.Status)]++
		if iv.Status == domain.StatusCompleted {
			stats.CompletedInterviews++
		}
		if iv.OverallScore != nil {
			scored++
			total += *iv.OverallScore
		}
	}
	if scored > 0 {
		stats.AverageScore = round2(total / float64(scored))
	}
	return stats, nil
}
