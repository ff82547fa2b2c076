package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"knowme-quiz-service/internal/domain"
	"knowme-quiz-service/internal/infra/memory"
)

// countingSource wraps the in-memory store so tests can see how often the
// cache falls through.
type countingSource struct {
	store *memory.QuizStore
	calls int
}

func (s *countingSource) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	s.calls++
	return s.store.GetQuiz(ctx, quizID)
}

func (s *countingSource) GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error) {
	s.calls++
	return s.store.GetQuizByCode(ctx, code)
}

func newCacheFixture(t *testing.T) (*QuizCache, *countingSource, *miniredis.Miniredis, string) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store := memory.NewQuizStore()
	id, err := store.CreateQuiz(context.Background(), domain.Quiz{
		ShortCode:   "ABC123",
		CreatorName: "Alice",
		Questions:   []domain.Question{{Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0}},
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingSource{store: store}
	return NewQuizCache(client, source, time.Minute), source, mr, id
}

func TestQuizCacheByCode(t *testing.T) {
	ctx := context.Background()
	cache, source, mr, _ := newCacheFixture(t)

	quiz, err := cache.GetQuizByCode(ctx, "ABC123")
	if err != nil {
		t.Fatalf("miss path failed: %v", err)
	}
	if quiz.ShortCode != "ABC123" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	if !mr.Exists("quiz:code:ABC123") {
		t.Fatalf("expected redis key after miss")
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.GetQuizByCode(ctx, "ABC123"); err != nil {
			t.Fatalf("hit path failed: %v", err)
		}
	}
	if source.calls != 1 {
		t.Fatalf("expected a single source hit, got %d", source.calls)
	}
}

func TestQuizCacheByID(t *testing.T) {
	ctx := context.Background()
	cache, source, mr, id := newCacheFixture(t)

	if _, err := cache.GetQuiz(ctx, id); err != nil {
		t.Fatalf("miss path failed: %v", err)
	}
	if !mr.Exists("quiz:id:" + id) {
		t.Fatalf("expected redis key after miss")
	}
	if _, err := cache.GetQuiz(ctx, id); err != nil {
		t.Fatalf("hit path failed: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected a single source hit, got %d", source.calls)
	}
}

func TestQuizCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache, source, mr, _ := newCacheFixture(t)

	if _, err := cache.GetQuizByCode(ctx, "ABC123"); err != nil {
		t.Fatalf("miss path failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := cache.GetQuizByCode(ctx, "ABC123"); err != nil {
		t.Fatalf("reload after expiry failed: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected a reload after TTL, got %d source hits", source.calls)
	}
}

func TestQuizCachePropagatesNotFound(t *testing.T) {
	ctx := context.Background()
	cache, _, mr, _ := newCacheFixture(t)

	if _, err := cache.GetQuizByCode(ctx, "ZZZZZZ"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:code:ZZZZZZ") {
		t.Fatalf("misses must not be cached")
	}
}
