package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"knowme-quiz-service/internal/domain"
)

func TestQuizStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	id, err := store.CreateQuiz(ctx, domain.Quiz{
		ShortCode:   "ABC123",
		CreatorName: "Alice",
		CreatorID:   "creator-1",
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated ID")
	}

	if _, err := store.GetQuiz(ctx, id); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := store.GetQuizByCode(ctx, "ABC123"); err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if exists, _ := store.CodeExists(ctx, "ABC123"); !exists {
		t.Fatalf("expected code taken")
	}
	if exists, _ := store.CodeExists(ctx, "ZZZZZZ"); exists {
		t.Fatalf("expected code free")
	}

	quiz, _ := store.GetQuiz(ctx, id)
	quiz.Title = "renamed"
	if err := store.UpdateQuiz(ctx, quiz); err != nil {
		t.Fatalf("update: %v", err)
	}
	quiz, _ = store.GetQuiz(ctx, id)
	if quiz.Title != "renamed" {
		t.Fatalf("update not applied: %+v", quiz)
	}

	if err := store.DeleteQuiz(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetQuiz(ctx, id); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.DeleteQuiz(ctx, id); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestQuizStoreListByCreator(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	base := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	older, _ := store.CreateQuiz(ctx, domain.Quiz{CreatorID: "creator-1", CreatorName: "Alice", CreatedAt: base})
	newer, _ := store.CreateQuiz(ctx, domain.Quiz{CreatorID: "creator-1", CreatorName: "Alice", CreatedAt: base.Add(time.Hour)})
	legacy, _ := store.CreateQuiz(ctx, domain.Quiz{CreatorName: "Alice", CreatedAt: base.Add(2 * time.Hour)})
	_, _ = store.CreateQuiz(ctx, domain.Quiz{CreatorID: "creator-2", CreatorName: "Bob", CreatedAt: base})

	quizzes, err := store.ListByCreator(ctx, "creator-1", "Alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 3 {
		t.Fatalf("expected 3 quizzes, got %d", len(quizzes))
	}
	if quizzes[0].ID != legacy || quizzes[1].ID != newer || quizzes[2].ID != older {
		t.Fatalf("expected newest-first with legacy name match, got %+v", quizzes)
	}

	// An anonymous session with a different ID must not see the name-only
	// record.
	quizzes, _ = store.ListByCreator(ctx, "creator-3", "")
	if len(quizzes) != 0 {
		t.Fatalf("expected no quizzes for a stranger, got %d", len(quizzes))
	}
}

func TestQuizStoreMissingCodeBackfill(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	id, _ := store.CreateQuiz(ctx, domain.Quiz{CreatorName: "Alice", CreatedAt: time.Now().UTC()})
	_, _ = store.CreateQuiz(ctx, domain.Quiz{ShortCode: "ABC123", CreatorName: "Bob", CreatedAt: time.Now().UTC()})

	missing, err := store.ListMissingCode(ctx)
	if err != nil {
		t.Fatalf("list missing: %v", err)
	}
	if len(missing) != 1 || missing[0].ID != id {
		t.Fatalf("expected only the codeless quiz, got %+v", missing)
	}

	if err := store.SetShortCode(ctx, id, "XYZ789"); err != nil {
		t.Fatalf("set code: %v", err)
	}
	if _, err := store.GetQuizByCode(ctx, "XYZ789"); err != nil {
		t.Fatalf("expected backfilled code resolvable: %v", err)
	}
	missing, _ = store.ListMissingCode(ctx)
	if len(missing) != 0 {
		t.Fatalf("expected no quizzes missing a code, got %d", len(missing))
	}

	if err := store.SetShortCode(ctx, "missing", "AAAAAA"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
