package memory

import (
	"context"
	"errors"
	"testing"

	"knowme-quiz-service/internal/domain"
)

func TestDraftStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	if _, err := store.GetDraft(ctx, "creator-1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := store.SaveDraft(ctx, "creator-1", domain.Draft{Title: "wip", Step: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveDraft(ctx, "creator-1", domain.Draft{Title: "wip", Step: 2}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	draft, err := store.GetDraft(ctx, "creator-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if draft.Step != 2 {
		t.Fatalf("expected latest snapshot, got %+v", draft)
	}

	if err := store.DeleteDraft(ctx, "creator-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteDraft(ctx, "creator-1"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session := domain.Session{Token: "tok-1", CreatorID: "creator-1", CreatorName: "Alice"}
	if err := store.SaveSession(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != session {
		t.Fatalf("expected %+v, got %+v", session, got)
	}

	if err := store.DeleteSession(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetSession(ctx, "tok-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.DeleteSession(ctx, "tok-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestCreatorStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewCreatorStore()

	creator := domain.Creator{Name: "Alice", PasswordHash: []byte("hash")}
	if err := store.CreateCreator(ctx, creator); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateCreator(ctx, creator); !errors.Is(err, domain.ErrCreatorExists) {
		t.Fatalf("expected duplicate rejected, got %v", err)
	}

	got, err := store.GetCreator(ctx, "Alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.PasswordHash) != "hash" {
		t.Fatalf("unexpected creator: %+v", got)
	}
	if _, err := store.GetCreator(ctx, "Nobody"); !errors.Is(err, domain.ErrCreatorNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
