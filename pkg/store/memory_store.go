package store

import (
	"sort"
	"sync"

	"interviewai/pkg/domain"
)

// MemoryStore keeps all records in-process. It backs unit tests and mirrors
// the ordering guarantees of the Postgres store.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	email      map[string]string // email -> user ID
	interviews map[string]domain.Interview
	scores     []domain.Score
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]domain.User),
		email:      make(map[string]string),
		interviews: make(map[string]domain.Interview),
	}
}

// SaveUser registers or replaces a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.users[u.ID]; ok && prev.Email != u.Email {
		delete(m.email, prev.Email)
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// ListUsers returns all users, newest first.
func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, u)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// CountUsers returns the number of users.
func (m *MemoryStore) CountUsers() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// DeleteUser removes a user record.
func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.email, u.Email)
		delete(m.users, id)
	}
	return nil
}

// SaveInterview stores or replaces an interview.
func (m *MemoryStore) SaveInterview(iv domain.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviews[iv.ID] = iv
	return nil
}

// GetInterview retrieves an interview by ID.
func (m *MemoryStore) GetInterview(id string) (domain.Interview, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	iv, ok := m.interviews[id]
	return iv, ok, nil
}

// ListInterviewsByUser returns a user's interviews, newest first.
func (m *MemoryStore) ListInterviewsByUser(userID string) ([]domain.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Interview, 0)
	for _, iv := range m.interviews {
		if iv.UserID == userID {
			res = append(res, iv)
		}
	}
	sortInterviewsNewestFirst(res)
	return res, nil
}

// ListInterviews returns all interviews, newest first.
func (m *MemoryStore) ListInterviews() ([]domain.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Interview, 0, len(m.interviews))
	for _, iv := range m.interviews {
		res = append(res, iv)
	}
	sortInterviewsNewestFirst(res)
	return res, nil
}

// DeleteInterview removes an interview and its scores.
func (m *MemoryStore) DeleteInterview(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.interviews, id)
	kept := m.scores[:0]
	for _, sc := range m.scores {
		if sc.InterviewID != id {
			kept = append(kept, sc)
		}
	}
	m.scores = kept
	return nil
}

// DeleteInterviewsByUser removes all interviews owned by a user along
// with their scores.
func (m *MemoryStore) DeleteInterviewsByUser(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, iv := range m.interviews {
		if iv.UserID == userID {
			delete(m.interviews, id)
		}
	}
	kept := m.scores[:0]
	for _, sc := range m.scores {
		if sc.UserID != userID {
			kept = append(kept, sc)
		}
	}
	m.scores = kept
	return nil
}

// SaveScore appends a score record.
func (m *MemoryStore) SaveScore(sc domain.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, sc)
	return nil
}

// ListScoresByUser returns a user's scores in chronological order.
func (m *MemoryStore) ListScoresByUser(userID string) ([]domain.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Score, 0)
	for _, sc := range m.scores {
		if sc.UserID == userID {
			res = append(res, sc)
		}
	}
	sortScoresOldestFirst(res)
	return res, nil
}

// ListScoresByInterview returns scores for one interview and user in
// chronological order.
func (m *MemoryStore) ListScoresByInterview(interviewID, userID string) ([]domain.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Score, 0)
	for _, sc := range m.scores {
		if sc.InterviewID == interviewID && sc.UserID == userID {
			res = append(res, sc)
		}
	}
	sortScoresOldestFirst(res)
	return res, nil
}

func sortInterviewsNewestFirst(items []domain.Interview) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

func sortScoresOldestFirst(items []domain.Score) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
