package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"knowme-quiz-service/internal/domain"
)

func TestDraftStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewDraftStore(client, time.Hour)

	draft := domain.Draft{
		CreatorName: "Alice",
		Title:       "wip",
		Questions:   []domain.Question{{Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1}},
		Step:        2,
		SavedAt:     time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC),
	}
	if err := store.SaveDraft(ctx, "creator-1", draft); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("draft:creator-1") {
		t.Fatalf("expected redis key to be set")
	}

	got, err := store.GetDraft(ctx, "creator-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Step != 2 || len(got.Questions) != 1 || got.Questions[0].CorrectAnswer != 1 {
		t.Fatalf("unexpected draft: %+v", got)
	}

	if err := store.DeleteDraft(ctx, "creator-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteDraft(ctx, "creator-1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestDraftStoreExpiry(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewDraftStore(client, time.Hour)

	if err := store.SaveDraft(ctx, "creator-1", domain.Draft{CreatorName: "Alice"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := store.GetDraft(ctx, "creator-1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected expired draft reported missing, got %v", err)
	}
}
