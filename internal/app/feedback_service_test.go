package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"knowme-quiz-service/internal/app"
	"knowme-quiz-service/internal/domain"
	"knowme-quiz-service/internal/infra/memory"
)

func TestSubmitFeedback(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizStore()
	quiz, err := newQuizService(quizzes, memory.NewDraftStore()).Create(ctx, app.CreateQuizInput{
		CreatorName: "Alice", Questions: validQuestions(),
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	service := app.NewFeedbackServiceWithClock(quizzes, memory.NewFeedbackStore(), func() time.Time { return testTime })

	fb, err := service.Submit(ctx, quiz.ID, app.FeedbackInput{
		Text:       "  great quiz  ",
		Rating:     5,
		Score:      2,
		Percentage: 100,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if fb.ID == "" || fb.Text != "great quiz" {
		t.Fatalf("unexpected feedback: %+v", fb)
	}

	listed, err := service.ListForQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Rating != 5 {
		t.Fatalf("expected the stored feedback, got %+v", listed)
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizStore()
	quiz, err := newQuizService(quizzes, memory.NewDraftStore()).Create(ctx, app.CreateQuizInput{
		CreatorName: "Alice", Questions: validQuestions(),
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	store := memory.NewFeedbackStore()
	service := app.NewFeedbackService(quizzes, store)

	if _, err := service.Submit(ctx, quiz.ID, app.FeedbackInput{Text: "   ", Rating: 3}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}
	if _, err := service.Submit(ctx, quiz.ID, app.FeedbackInput{Text: "hi", Rating: 0}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for rating 0, got %v", err)
	}
	if _, err := service.Submit(ctx, quiz.ID, app.FeedbackInput{Text: "hi", Rating: 6}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for rating 6, got %v", err)
	}
	if _, err := service.Submit(ctx, "missing", app.FeedbackInput{Text: "hi", Rating: 3}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found for unknown quiz, got %v", err)
	}

	listed, _ := store.ListByQuiz(ctx, quiz.ID)
	if len(listed) != 0 {
		t.Fatalf("rejected submissions must not write, found %d", len(listed))
	}
}

func TestFeedbackNewestFirst(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizStore()
	quiz, err := newQuizService(quizzes, memory.NewDraftStore()).Create(ctx, app.CreateQuizInput{
		CreatorName: "Alice", Questions: validQuestions(),
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	clock := testTime
	service := app.NewFeedbackServiceWithClock(quizzes, memory.NewFeedbackStore(), func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	for _, text := range []string{"first", "second", "third"} {
		if _, err := service.Submit(ctx, quiz.ID, app.FeedbackInput{Text: text, Rating: 4}); err != nil {
			t.Fatalf("submit %q: %v", text, err)
		}
	}

	listed, err := service.ListForQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 3 || listed[0].Text != "third" || listed[2].Text != "first" {
		t.Fatalf("expected newest-first ordering, got %+v", listed)
	}
}
