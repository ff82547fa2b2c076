package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"knowme-quiz-service/internal/domain"
)

// DraftStore keeps authoring autosave snapshots in Redis under
// draft:{creatorID}, with the TTL doubling as the staleness cutoff.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func (s *DraftStore) SaveDraft(ctx context.Context, creatorID string, draft domain.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, s.key(creatorID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *DraftStore) GetDraft(ctx context.Context, creatorID string) (domain.Draft, error) {
	raw, err := s.client.Get(ctx, s.key(creatorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Draft{}, domain.ErrDraftNotFound
		}
		return domain.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	var draft domain.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return draft, nil
}

func (s *DraftStore) DeleteDraft(ctx context.Context, creatorID string) error {
	deleted, err := s.client.Del(ctx, s.key(creatorID)).Result()
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if deleted == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

func (s *DraftStore) key(creatorID string) string {
	return "draft:" + creatorID
}
