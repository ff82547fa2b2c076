package app

import (
	"context"
	"time"

	"knowme-quiz-service/internal/domain"
)

// DraftTTL is how long an autosaved draft stays restorable.
const DraftTTL = 24 * time.Hour

// DraftService manages the authoring autosave snapshot. Everything here is
// best-effort convenience; callers log failures instead of surfacing them so
// a broken key/value store never blocks the authoring flow.
type DraftService struct {
	drafts DraftStore
	now    func() time.Time
}

func NewDraftService(drafts DraftStore) *DraftService {
	return NewDraftServiceWithClock(drafts, time.Now)
}

// NewDraftServiceWithClock is for deterministic staleness checks in tests.
func NewDraftServiceWithClock(drafts DraftStore, now func() time.Time) *DraftService {
	return &DraftService{drafts: drafts, now: now}
}

// Save snapshots the in-progress draft, stamping it with the current time.
func (s *DraftService) Save(ctx context.Context, creatorID string, draft domain.Draft) error {
	draft.SavedAt = s.now().UTC()
	return s.drafts.SaveDraft(ctx, creatorID, draft)
}

// Load restores the creator's draft. Drafts older than DraftTTL are
// discarded and reported as not found.
func (s *DraftService) Load(ctx context.Context, creatorID string) (domain.Draft, error) {
	draft, err := s.drafts.GetDraft(ctx, creatorID)
	if err != nil {
		return domain.Draft{}, err
	}
	if s.now().Sub(draft.SavedAt) > DraftTTL {
		_ = s.drafts.DeleteDraft(ctx, creatorID)
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	return draft, nil
}

// Discard drops the draft, e.g. when the user abandons it explicitly.
func (s *DraftService) Discard(ctx context.Context, creatorID string) error {
	return s.drafts.DeleteDraft(ctx, creatorID)
}
