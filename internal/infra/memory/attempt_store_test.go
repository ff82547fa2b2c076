package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"knowme-quiz-service/internal/domain"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()
	base := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	first, err := store.CreateAttempt(ctx, domain.QuizAttempt{
		QuizID:          "quiz-1",
		ParticipantName: "Bob",
		AttemptToken:    "tok-1",
		CreatedAt:       base,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, _ := store.CreateAttempt(ctx, domain.QuizAttempt{
		QuizID:          "quiz-1",
		ParticipantName: "Carol",
		CreatedAt:       base.Add(time.Minute),
	})
	_, _ = store.CreateAttempt(ctx, domain.QuizAttempt{QuizID: "quiz-2", CreatedAt: base})

	attempts, err := store.ListByQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts for quiz-1, got %d", len(attempts))
	}
	if attempts[0].ID != second || attempts[1].ID != first {
		t.Fatalf("expected newest-first ordering, got %+v", attempts)
	}

	byToken, err := store.GetByToken(ctx, "quiz-1", "tok-1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if byToken.ID != first {
		t.Fatalf("expected attempt %q, got %q", first, byToken.ID)
	}

	// The token is scoped to its quiz.
	if _, err := store.GetByToken(ctx, "quiz-2", "tok-1"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected not found for other quiz, got %v", err)
	}
}

func TestAttemptStoreRejectsDuplicateToken(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	if _, err := store.CreateAttempt(ctx, domain.QuizAttempt{QuizID: "quiz-1", AttemptToken: "tok-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateAttempt(ctx, domain.QuizAttempt{QuizID: "quiz-1", AttemptToken: "tok-1"}); !errors.Is(err, domain.ErrDuplicateAttempt) {
		t.Fatalf("expected duplicate token rejected, got %v", err)
	}
	// The same token under another quiz is a distinct attempt.
	if _, err := store.CreateAttempt(ctx, domain.QuizAttempt{QuizID: "quiz-2", AttemptToken: "tok-1"}); err != nil {
		t.Fatalf("create for other quiz: %v", err)
	}
	// Tokenless attempts may repeat freely.
	for i := 0; i < 2; i++ {
		if _, err := store.CreateAttempt(ctx, domain.QuizAttempt{QuizID: "quiz-1"}); err != nil {
			t.Fatalf("tokenless create: %v", err)
		}
	}
}
