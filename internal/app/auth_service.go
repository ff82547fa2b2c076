package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"knowme-quiz-service/internal/domain"
)

const minPasswordLen = 6

// CreatorStore persists registered creator accounts.
type CreatorStore interface {
	CreateCreator(ctx context.Context, creator domain.Creator) error
	GetCreator(ctx context.Context, name string) (domain.Creator, error)
}

// SessionStore keeps opaque session tokens in the key/value store with a TTL.
type SessionStore interface {
	SaveSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, token string) (domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService issues anonymous and credentialed creator sessions. Passwords
// are stored as bcrypt hashes; the token is the only thing clients hold on to.
type AuthService struct {
	creators CreatorStore
	sessions SessionStore
	now      func() time.Time
}

func NewAuthService(creators CreatorStore, sessions SessionStore) *AuthService {
	return NewAuthServiceWithClock(creators, sessions, time.Now)
}

// NewAuthServiceWithClock is for deterministic timestamps in tests.
func NewAuthServiceWithClock(creators CreatorStore, sessions SessionStore, now func() time.Time) *AuthService {
	return &AuthService{creators: creators, sessions: sessions, now: now}
}

// Anonymous issues a session with a fresh creator ID and no account behind
// it. This is the default identity for first-time visitors.
func (s *AuthService) Anonymous(ctx context.Context) (domain.Session, error) {
	session := domain.Session{
		Token:     uuid.NewString(),
		CreatorID: uuid.NewString(),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Register creates a creator account and logs it in.
func (s *AuthService) Register(ctx context.Context, name, password string) (domain.Session, error) {
	name = strings.TrimSpace(name)
	var problems []string
	if name == "" {
		problems = append(problems, "creator name is required")
	}
	if len(name) > maxCreatorName {
		problems = append(problems, fmt.Sprintf("creator name is limited to %d characters", maxCreatorName))
	}
	if len(password) < minPasswordLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(problems) > 0 {
		return domain.Session{}, &domain.ValidationError{Problems: problems}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}
	creator := domain.Creator{
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.creators.CreateCreator(ctx, creator); err != nil {
		return domain.Session{}, err
	}
	return s.issueSession(ctx, name)
}

// Login verifies credentials and issues a session. Unknown names and wrong
// passwords both come back as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, name, password string) (domain.Session, error) {
	name = strings.TrimSpace(name)
	creator, err := s.creators.GetCreator(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrCreatorNotFound) {
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, err
	}
	if bcrypt.CompareHashAndPassword(creator.PasswordHash, []byte(password)) != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return s.issueSession(ctx, name)
}

// Logout invalidates the token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.sessions.DeleteSession(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return err
}

// Resolve maps a bearer token to its session.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s.sessions.GetSession(ctx, token)
}

func (s *AuthService) issueSession(ctx context.Context, name string) (domain.Session, error) {
	session := domain.Session{
		Token:       uuid.NewString(),
		CreatorID:   creatorIDFor(name),
		CreatorName: name,
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// creatorIDFor derives a stable identity from the account name, so a creator
// sees the same quizzes across devices and logins.
func creatorIDFor(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("creator:"+name)).String()
}
