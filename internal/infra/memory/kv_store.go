package memory

import (
	"context"
	"sync"

	"knowme-quiz-service/internal/domain"
)

// DraftStore is an in-memory implementation of app.DraftStore. TTL handling
// lives in the draft service, so this only keeps the latest snapshot.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.Draft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]domain.Draft)}
}

func (s *DraftStore) SaveDraft(_ context.Context, creatorID string, draft domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[creatorID] = draft
	return nil
}

func (s *DraftStore) GetDraft(_ context.Context, creatorID string) (domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[creatorID]
	if !ok {
		return domain.Draft{}, domain.ErrDraftNotFound
	}
	return draft, nil
}

func (s *DraftStore) DeleteDraft(_ context.Context, creatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[creatorID]; !ok {
		return domain.ErrDraftNotFound
	}
	delete(s.drafts, creatorID)
	return nil
}

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

func (s *SessionStore) SaveSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, token string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}

// CreatorStore is an in-memory implementation of app.CreatorStore.
type CreatorStore struct {
	mu       sync.RWMutex
	creators map[string]domain.Creator
}

func NewCreatorStore() *CreatorStore {
	return &CreatorStore{creators: make(map[string]domain.Creator)}
}

func (s *CreatorStore) CreateCreator(_ context.Context, creator domain.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creators[creator.Name]; ok {
		return domain.ErrCreatorExists
	}
	s.creators[creator.Name] = creator
	return nil
}

func (s *CreatorStore) GetCreator(_ context.Context, name string) (domain.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creator, ok := s.creators[name]
	if !ok {
		return domain.Creator{}, domain.ErrCreatorNotFound
	}
	return creator, nil
}
