package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// CorrectAnswerNone marks a question whose correct-answer reference was
// cleared, e.g. after an edit removed the previously-correct option.
const CorrectAnswerNone = -1

// Question is an MCQ question embedded in a quiz. The correct answer is
// stored canonically as an index into Options.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// UnmarshalJSON accepts both the canonical index form and two legacy shapes:
// a prompt under "questionText" and a correct answer given as the literal
// option string. Literal answers that match no option decode as
// CorrectAnswerNone.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text       string          `json:"question"`
		LegacyText string          `json:"questionText"`
		Options    []string        `json:"options"`
		Correct    json.RawMessage `json:"correctAnswer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Text = raw.Text
	if q.Text == "" {
		q.Text = raw.LegacyText
	}
	q.Options = raw.Options
	q.CorrectAnswer = decodeCorrect(raw.Correct, raw.Options)
	return nil
}

func decodeCorrect(raw json.RawMessage, options []string) int {
	if len(raw) == 0 {
		return CorrectAnswerNone
	}
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		return idx
	}
	var literal string
	if err := json.Unmarshal(raw, &literal); err != nil {
		return CorrectAnswerNone
	}
	for i, opt := range options {
		if opt == literal {
			return i
		}
	}
	return CorrectAnswerNone
}

// HasValidCorrect reports whether the correct-answer index references one of
// the question's own options.
func (q Question) HasValidCorrect() bool {
	return q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

// Quiz is the authored entity shared by code.
type Quiz struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"shortCode,omitempty"`
	CreatorName string     `json:"creatorName"`
	CreatorID   string     `json:"creatorId,omitempty"`
	Title       string     `json:"title,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AnswerRecord captures the outcome for a single question of an attempt, in
// question order. SelectedAnswer is an option index, CorrectAnswerNone when
// the participant left the question unanswered.
type AnswerRecord struct {
	QuestionIndex  int  `json:"questionIndex"`
	SelectedAnswer int  `json:"selectedAnswer"`
	CorrectAnswer  int  `json:"correctAnswer"`
	IsCorrect      bool `json:"isCorrect"`
}

// QuizAttempt is a completed play-through, written once and never mutated.
type QuizAttempt struct {
	ID              string         `json:"id"`
	QuizID          string         `json:"quizId"`
	ParticipantName string         `json:"participantName"`
	Score           int            `json:"score"`
	TotalQuestions  int            `json:"totalQuestions"`
	Percentage      int            `json:"percentage"`
	Answers         []AnswerRecord `json:"answers"`
	AttemptToken    string         `json:"attemptToken,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Feedback is free-text feedback left on the results screen, scoped under
// the quiz it belongs to. Score and Percentage are denormalized from the
// attempt that produced it.
type Feedback struct {
	ID         string    `json:"id"`
	Text       string    `json:"feedback"`
	Rating     int       `json:"rating"`
	Score      int       `json:"score"`
	Percentage int       `json:"percentage"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Creator is a registered quiz author. Anonymous authors exist only as a
// session-bound creator ID and never get a Creator record.
type Creator struct {
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session binds an opaque token to a creator identity. CreatorName is empty
// for anonymous sessions.
type Session struct {
	Token       string `json:"token"`
	CreatorID   string `json:"creatorId"`
	CreatorName string `json:"creatorName,omitempty"`
}

// Draft is an autosaved in-progress quiz, kept in the key/value store with a
// TTL. It is a convenience snapshot, never authoritative.
type Draft struct {
	CreatorName string     `json:"creatorName"`
	Title       string     `json:"title,omitempty"`
	Questions   []Question `json:"questions"`
	Step        int        `json:"step"`
	SavedAt     time.Time  `json:"savedAt"`
}

// NormalizeCode canonicalizes user-entered short codes for lookup.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
