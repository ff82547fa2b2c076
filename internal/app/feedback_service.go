package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"knowme-quiz-service/internal/domain"
)

// FeedbackStore persists feedback under its owning quiz.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, quizID string, fb domain.Feedback) (string, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Feedback, error)
}

// FeedbackInput is a results-screen feedback submission.
type FeedbackInput struct {
	Text       string
	Rating     int
	Score      int
	Percentage int
}

// FeedbackService handles the results-screen feedback flow.
type FeedbackService struct {
	quizzes  QuizReader
	feedback FeedbackStore
	now      func() time.Time
}

func NewFeedbackService(quizzes QuizReader, feedback FeedbackStore) *FeedbackService {
	return NewFeedbackServiceWithClock(quizzes, feedback, time.Now)
}

// NewFeedbackServiceWithClock is for deterministic timestamps in tests.
func NewFeedbackServiceWithClock(quizzes QuizReader, feedback FeedbackStore, now func() time.Time) *FeedbackService {
	return &FeedbackService{quizzes: quizzes, feedback: feedback, now: now}
}

// Submit validates and writes one feedback record under the quiz. Nothing is
// written on validation failure.
func (s *FeedbackService) Submit(ctx context.Context, quizID string, in FeedbackInput) (domain.Feedback, error) {
	text := strings.TrimSpace(in.Text)
	var problems []string
	if text == "" {
		problems = append(problems, "feedback text is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		problems = append(problems, "rating must be between 1 and 5")
	}
	if len(problems) > 0 {
		return domain.Feedback{}, &domain.ValidationError{Problems: problems}
	}

	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Feedback{}, err
	}

	fb := domain.Feedback{
		Text:       text,
		Rating:     in.Rating,
		Score:      in.Score,
		Percentage: in.Percentage,
		CreatedAt:  s.now().UTC(),
	}
	id, err := s.feedback.CreateFeedback(ctx, quizID, fb)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	fb.ID = id
	return fb, nil
}

// ListForQuiz returns a quiz's feedback newest-first.
func (s *FeedbackService) ListForQuiz(ctx context.Context, quizID string) ([]domain.Feedback, error) {
	return s.feedback.ListByQuiz(ctx, quizID)
}
