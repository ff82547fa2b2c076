package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"knowme-quiz-service/internal/domain"
)

// FeedbackStore is an in-memory implementation of app.FeedbackStore, keyed
// under the owning quiz like the document store's sub-collection.
type FeedbackStore struct {
	mu     sync.RWMutex
	byQuiz map[string][]domain.Feedback
}

func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{byQuiz: make(map[string][]domain.Feedback)}
}

func (s *FeedbackStore) CreateFeedback(_ context.Context, quizID string, fb domain.Feedback) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb.ID = uuid.NewString()
	s.byQuiz[quizID] = append(s.byQuiz[quizID], fb)
	return fb.ID, nil
}

func (s *FeedbackStore) ListByQuiz(_ context.Context, quizID string) ([]domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Feedback, len(s.byQuiz[quizID]))
	copy(out, s.byQuiz[quizID])
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
