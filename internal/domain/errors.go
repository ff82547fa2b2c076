package domain

import (
	"errors"
	"strings"
)

var (
	// ErrQuizNotFound is the first-class "code did not resolve" outcome.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates no attempt matches the given reference.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrDuplicateAttempt is returned when a write loses the race on an
	// idempotency token; the stored attempt can be re-read by that token.
	ErrDuplicateAttempt = errors.New("attempt already recorded for this token")
	// ErrDraftNotFound indicates no usable autosaved draft exists.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrSessionNotFound indicates an unknown or expired session token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCreatorExists is returned when registering an already-taken name.
	ErrCreatorExists = errors.New("creator name already taken")
	// ErrCreatorNotFound indicates no account exists under that name.
	ErrCreatorNotFound = errors.New("creator not found")
	// ErrInvalidCredentials covers both unknown names and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotOwner is returned when a session tries to mutate someone else's quiz.
	ErrNotOwner = errors.New("quiz does not belong to this creator")
)

// ValidationError aggregates the input problems found before anything is
// written to the store.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
