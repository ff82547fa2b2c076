package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"knowme-quiz-service/internal/domain"
)

const (
	maxCreatorName = 30
	minOptions     = 2
	maxOptions     = 6
)

// QuizStore abstracts quiz persistence (in-memory, Postgres).
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByCreator(ctx context.Context, creatorID, creatorName string) ([]domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error
	ListMissingCode(ctx context.Context) ([]domain.Quiz, error)
	SetShortCode(ctx context.Context, quizID, code string) error
}

// QuizReader is the read-only slice of QuizStore used by the join path; the
// cache layer implements just this.
type QuizReader interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error)
}

// DraftStore holds autosaved authoring drafts keyed by creator ID.
type DraftStore interface {
	SaveDraft(ctx context.Context, creatorID string, draft domain.Draft) error
	GetDraft(ctx context.Context, creatorID string) (domain.Draft, error)
	DeleteDraft(ctx context.Context, creatorID string) error
}

// CreateQuizInput is the authoring submission before validation.
type CreateQuizInput struct {
	CreatorName string
	CreatorID   string
	Title       string
	Questions   []domain.Question
}

// QuizUpdate is a partial edit of a single quiz. Nil fields are untouched.
type QuizUpdate struct {
	Title     *string
	Questions []domain.Question
}

// QuizService covers the authoring and creator-space use cases.
type QuizService struct {
	quizzes QuizStore
	codes   *ShortCodeGenerator
	drafts  DraftStore
	now     func() time.Time
}

func NewQuizService(quizzes QuizStore, codes *ShortCodeGenerator, drafts DraftStore) *QuizService {
	return NewQuizServiceWithClock(quizzes, codes, drafts, time.Now)
}

// NewQuizServiceWithClock is for deterministic timestamps in tests.
func NewQuizServiceWithClock(quizzes QuizStore, codes *ShortCodeGenerator, drafts DraftStore, now func() time.Time) *QuizService {
	return &QuizService{quizzes: quizzes, codes: codes, drafts: drafts, now: now}
}

// Create validates the submission, generates a short code and persists the
// quiz. Nothing is written when validation fails. On success the creator's
// autosaved draft is discarded best-effort.
func (s *QuizService) Create(ctx context.Context, in CreateQuizInput) (domain.Quiz, error) {
	name := strings.TrimSpace(in.CreatorName)
	var problems []string
	if name == "" {
		problems = append(problems, "creator name is required")
	}
	if len(name) > maxCreatorName {
		problems = append(problems, fmt.Sprintf("creator name is limited to %d characters", maxCreatorName))
	}

	questions := make([]domain.Question, 0, len(in.Questions))
	for _, q := range in.Questions {
		if clean, ok := sanitizeQuestion(q); ok {
			questions = append(questions, clean)
		}
	}
	if len(questions) == 0 {
		problems = append(problems, "at least one complete question is required")
	}
	if len(problems) > 0 {
		return domain.Quiz{}, &domain.ValidationError{Problems: problems}
	}

	quiz := domain.Quiz{
		ShortCode:   s.codes.Generate(ctx),
		CreatorName: name,
		CreatorID:   in.CreatorID,
		Title:       strings.TrimSpace(in.Title),
		Questions:   questions,
		CreatedAt:   s.now().UTC(),
	}
	id, err := s.quizzes.CreateQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	quiz.ID = id

	if s.drafts != nil && in.CreatorID != "" {
		if err := s.drafts.DeleteDraft(ctx, in.CreatorID); err != nil && err != domain.ErrDraftNotFound {
			log.Printf("discard draft after publish: %v", err)
		}
	}
	return quiz, nil
}

// GetByCode resolves a user-entered code to the quiz. Input is trimmed and
// upper-cased before lookup; an unknown code is domain.ErrQuizNotFound.
func (s *QuizService) GetByCode(ctx context.Context, rawCode string) (domain.Quiz, error) {
	code := domain.NormalizeCode(rawCode)
	if code == "" {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.quizzes.GetQuizByCode(ctx, code)
}

// ListForCreator returns the creator's quizzes newest-first. Records written
// before creator IDs existed are matched by creator name.
func (s *QuizService) ListForCreator(ctx context.Context, creatorID, creatorName string) ([]domain.Quiz, error) {
	return s.quizzes.ListByCreator(ctx, creatorID, creatorName)
}

// GetOwned fetches a quiz and verifies the session owns it.
func (s *QuizService) GetOwned(ctx context.Context, quizID string, session domain.Session) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !owns(session, quiz) {
		return domain.Quiz{}, domain.ErrNotOwner
	}
	return quiz, nil
}

// Update applies a partial edit to an owned quiz. Edited questions are
// re-validated and the correct-answer reference is remapped against the new
// options, or cleared when the previously-correct option no longer exists.
func (s *QuizService) Update(ctx context.Context, quizID string, session domain.Session, update QuizUpdate) (domain.Quiz, error) {
	quiz, err := s.GetOwned(ctx, quizID, session)
	if err != nil {
		return domain.Quiz{}, err
	}

	if update.Title != nil {
		quiz.Title = strings.TrimSpace(*update.Title)
	}
	if update.Questions != nil {
		edited := make([]domain.Question, 0, len(update.Questions))
		for i, q := range update.Questions {
			clean, ok := sanitizeEdit(q)
			if !ok {
				return domain.Quiz{}, &domain.ValidationError{
					Problems: []string{fmt.Sprintf("question %d is incomplete", i+1)},
				}
			}
			if i < len(quiz.Questions) {
				clean.CorrectAnswer = remapCorrect(quiz.Questions[i], clean)
			} else if !clean.HasValidCorrect() {
				// A newly added question has no stored counterpart to remap
				// from, so it must designate its own correct answer.
				return domain.Quiz{}, &domain.ValidationError{
					Problems: []string{fmt.Sprintf("question %d needs a correct answer", i+1)},
				}
			}
			edited = append(edited, clean)
		}
		if len(edited) == 0 {
			return domain.Quiz{}, &domain.ValidationError{Problems: []string{"a quiz needs at least one question"}}
		}
		quiz.Questions = edited
	}

	if err := s.quizzes.UpdateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	return quiz, nil
}

// Delete removes an owned quiz. Attempts and feedback are not cascaded; they
// become unreachable, matching the store's flat layout.
func (s *QuizService) Delete(ctx context.Context, quizID string, session domain.Session) error {
	if _, err := s.GetOwned(ctx, quizID, session); err != nil {
		return err
	}
	return s.quizzes.DeleteQuiz(ctx, quizID)
}

// BackfillShortCodes assigns codes to quizzes that predate the field. It is
// the operational maintenance task behind the migrate-era records, not a
// steady-state path.
func (s *QuizService) BackfillShortCodes(ctx context.Context) (int, error) {
	missing, err := s.quizzes.ListMissingCode(ctx)
	if err != nil {
		return 0, fmt.Errorf("list quizzes missing code: %w", err)
	}
	updated := 0
	for _, quiz := range missing {
		code := s.codes.Generate(ctx)
		if err := s.quizzes.SetShortCode(ctx, quiz.ID, code); err != nil {
			return updated, fmt.Errorf("backfill quiz %s: %w", quiz.ID, err)
		}
		updated++
		log.Printf("backfilled quiz %s with code %s", quiz.ID, code)
	}
	return updated, nil
}

func owns(session domain.Session, quiz domain.Quiz) bool {
	if quiz.CreatorID != "" {
		return quiz.CreatorID == session.CreatorID
	}
	// Legacy records carry only a creator name.
	return session.CreatorName != "" && quiz.CreatorName == session.CreatorName
}

// sanitizeQuestion trims the prompt, drops empty options (remapping the
// correct index by position) and reports whether the question is complete
// enough to keep: non-empty prompt, 2-6 surviving options, and a correct
// answer that still references one of them.
func sanitizeQuestion(q domain.Question) (domain.Question, bool) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return domain.Question{}, false
	}

	options := make([]string, 0, len(q.Options))
	correct := domain.CorrectAnswerNone
	for i, opt := range q.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if i == q.CorrectAnswer {
			correct = len(options)
		}
		options = append(options, opt)
	}
	if len(options) < minOptions || len(options) > maxOptions {
		return domain.Question{}, false
	}
	if correct == domain.CorrectAnswerNone {
		return domain.Question{}, false
	}
	return domain.Question{Text: text, Options: options, CorrectAnswer: correct}, true
}

// sanitizeEdit is the edit-path variant: same option rules, but the correct
// answer may be absent because remapping against the stored question decides it.
func sanitizeEdit(q domain.Question) (domain.Question, bool) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return domain.Question{}, false
	}
	options := make([]string, 0, len(q.Options))
	correct := domain.CorrectAnswerNone
	for i, opt := range q.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if i == q.CorrectAnswer {
			correct = len(options)
		}
		options = append(options, opt)
	}
	if len(options) < minOptions || len(options) > maxOptions {
		return domain.Question{}, false
	}
	return domain.Question{Text: text, Options: options, CorrectAnswer: correct}, true
}

// remapCorrect keeps the edited question's own designation when valid, falls
// back to the old correct option's text if it survived the edit, and clears
// the reference otherwise. It never leaves an index pointing outside the
// options.
func remapCorrect(old, edited domain.Question) int {
	if edited.HasValidCorrect() {
		return edited.CorrectAnswer
	}
	if old.HasValidCorrect() {
		oldText := old.Options[old.CorrectAnswer]
		for i, opt := range edited.Options {
			if opt == oldText {
				return i
			}
		}
	}
	return domain.CorrectAnswerNone
}
