package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"knowme-quiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.QuizAttempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[string]domain.QuizAttempt)}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.QuizAttempt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if attempt.AttemptToken != "" {
		for _, existing := range s.attempts {
			if existing.QuizID == attempt.QuizID && existing.AttemptToken == attempt.AttemptToken {
				return "", domain.ErrDuplicateAttempt
			}
		}
	}
	attempt.ID = uuid.NewString()
	s.attempts[attempt.ID] = attempt
	return attempt.ID, nil
}

func (s *AttemptStore) GetByToken(_ context.Context, quizID, token string) (domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, attempt := range s.attempts {
		if attempt.QuizID == quizID && attempt.AttemptToken == token {
			return attempt, nil
		}
	}
	return domain.QuizAttempt{}, domain.ErrAttemptNotFound
}

func (s *AttemptStore) ListByQuiz(_ context.Context, quizID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QuizAttempt
	for _, attempt := range s.attempts {
		if attempt.QuizID == quizID {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Count reports the total number of stored attempts; test helper.
func (s *AttemptStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}
