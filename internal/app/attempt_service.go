package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"knowme-quiz-service/internal/domain"
)

// AttemptStore persists completed play-throughs.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt domain.QuizAttempt) (string, error)
	GetByToken(ctx context.Context, quizID, token string) (domain.QuizAttempt, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.QuizAttempt, error)
}

// AttemptInput is one completed play-through before scoring. Selections holds
// one option index per question in question order; domain.CorrectAnswerNone
// marks a question the participant never answered (e.g. the countdown ran
// out). AttemptToken, when set, makes resubmission return the original
// attempt instead of writing a duplicate.
type AttemptInput struct {
	ParticipantName string
	Selections      []int
	AttemptToken    string
}

// AttemptService scores and persists attempts and fans new ones out to feed
// subscribers.
type AttemptService struct {
	quizzes  QuizReader
	attempts AttemptStore
	now      func() time.Time

	mu    sync.RWMutex
	feeds map[string]map[chan domain.QuizAttempt]struct{}
}

func NewAttemptService(quizzes QuizReader, attempts AttemptStore) *AttemptService {
	return NewAttemptServiceWithClock(quizzes, attempts, time.Now)
}

// NewAttemptServiceWithClock is for deterministic timestamps in tests.
func NewAttemptServiceWithClock(quizzes QuizReader, attempts AttemptStore, now func() time.Time) *AttemptService {
	return &AttemptService{
		quizzes:  quizzes,
		attempts: attempts,
		now:      now,
		feeds:    make(map[string]map[chan domain.QuizAttempt]struct{}),
	}
}

// Submit resolves the code, scores the selections and writes the attempt
// once, at the end of the flow. An unknown code writes nothing and returns
// domain.ErrQuizNotFound.
func (s *AttemptService) Submit(ctx context.Context, rawCode string, in AttemptInput) (domain.QuizAttempt, error) {
	code := domain.NormalizeCode(rawCode)
	if code == "" {
		return domain.QuizAttempt{}, domain.ErrQuizNotFound
	}
	quiz, err := s.quizzes.GetQuizByCode(ctx, code)
	if err != nil {
		return domain.QuizAttempt{}, err
	}

	if in.AttemptToken != "" {
		existing, err := s.attempts.GetByToken(ctx, quiz.ID, in.AttemptToken)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrAttemptNotFound) {
			return domain.QuizAttempt{}, fmt.Errorf("check attempt token: %w", err)
		}
	}

	if len(in.Selections) != len(quiz.Questions) {
		return domain.QuizAttempt{}, &domain.ValidationError{
			Problems: []string{fmt.Sprintf("expected %d answers, got %d", len(quiz.Questions), len(in.Selections))},
		}
	}

	name := strings.TrimSpace(in.ParticipantName)
	if name == "" {
		name = "Anonymous"
	}

	score, percentage, answers := ScoreAttempt(quiz, in.Selections)
	attempt := domain.QuizAttempt{
		QuizID:          quiz.ID,
		ParticipantName: name,
		Score:           score,
		TotalQuestions:  len(quiz.Questions),
		Percentage:      percentage,
		Answers:         answers,
		AttemptToken:    in.AttemptToken,
		CreatedAt:       s.now().UTC(),
	}
	id, err := s.attempts.CreateAttempt(ctx, attempt)
	if errors.Is(err, domain.ErrDuplicateAttempt) && in.AttemptToken != "" {
		// Lost the race against a concurrent submission with the same token;
		// the stored attempt is the one to return.
		return s.attempts.GetByToken(ctx, quiz.ID, in.AttemptToken)
	}
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("create attempt: %w", err)
	}
	attempt.ID = id

	s.broadcast(quiz.ID, attempt)
	return attempt, nil
}

// ListForQuiz returns a quiz's attempts newest-first.
func (s *AttemptService) ListForQuiz(ctx context.Context, quizID string) ([]domain.QuizAttempt, error) {
	return s.attempts.ListByQuiz(ctx, quizID)
}

// Subscribe returns a channel receiving attempts as they land for the quiz.
// The caller must invoke the cancel function to avoid leaks.
func (s *AttemptService) Subscribe(ctx context.Context, quizID string) (<-chan domain.QuizAttempt, func(), error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.QuizAttempt, 8)
	s.mu.Lock()
	subs, ok := s.feeds[quizID]
	if !ok {
		subs = make(map[chan domain.QuizAttempt]struct{})
		s.feeds[quizID] = subs
	}
	subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.feeds[quizID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.feeds, quizID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

// broadcast fans the attempt out under the exclusive lock: serialized senders
// mean the slot freed by the drain below is still free for the send.
func (s *AttemptService) broadcast(quizID string, attempt domain.QuizAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.feeds[quizID] {
		select {
		case ch <- attempt:
		default:
			// Drop the oldest buffered attempt so a slow dashboard never
			// blocks submission.
			select {
			case <-ch:
			default:
			}
			ch <- attempt
		}
	}
}
