package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"knowme-quiz-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore, used by tests
// and the no-database demo mode.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.Quiz)}
}

func (s *QuizStore) CreateQuiz(_ context.Context, quiz domain.Quiz) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = uuid.NewString()
	s.quizzes[quiz.ID] = quiz
	return quiz.ID, nil
}

func (s *QuizStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizStore) GetQuizByCode(_ context.Context, code string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.ShortCode != "" && quiz.ShortCode == code {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *QuizStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.ShortCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *QuizStore) ListByCreator(_ context.Context, creatorID, creatorName string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range s.quizzes {
		if ownedBy(quiz, creatorID, creatorName) {
			out = append(out, quiz)
		}
	}
	sortQuizzesNewestFirst(out)
	return out, nil
}

func (s *QuizStore) UpdateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	return nil
}

func (s *QuizStore) ListMissingCode(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range s.quizzes {
		if quiz.ShortCode == "" {
			out = append(out, quiz)
		}
	}
	sortQuizzesNewestFirst(out)
	return out, nil
}

func (s *QuizStore) SetShortCode(_ context.Context, quizID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.ShortCode = code
	s.quizzes[quizID] = quiz
	return nil
}

func ownedBy(quiz domain.Quiz, creatorID, creatorName string) bool {
	if quiz.CreatorID != "" {
		return creatorID != "" && quiz.CreatorID == creatorID
	}
	return creatorName != "" && quiz.CreatorName == creatorName
}

func sortQuizzesNewestFirst(quizzes []domain.Quiz) {
	sort.Slice(quizzes, func(i, j int) bool {
		if !quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
		}
		return quizzes[i].ID < quizzes[j].ID
	})
}
