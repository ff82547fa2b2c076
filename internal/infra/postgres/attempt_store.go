package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"knowme-quiz-service/internal/domain"
)

// AttemptStore persists attempts as a flat collection carrying quiz_id as a
// plain column, unlike feedback which nests under its quiz.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.QuizAttempt) (string, error) {
	attempt.ID = uuid.NewString()
	data, err := json.Marshal(attempt)
	if err != nil {
		return "", fmt.Errorf("encode attempt: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (id, quiz_id, attempt_token, created_at, data)
		 VALUES ($1, $2, $3, $4, $5)`,
		attempt.ID, attempt.QuizID, attempt.AttemptToken, attempt.CreatedAt, data)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is the token's partial unique index losing a concurrent race.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.ErrDuplicateAttempt
		}
		return "", fmt.Errorf("insert attempt: %w", err)
	}
	return attempt.ID, nil
}

func (s *AttemptStore) GetByToken(ctx context.Context, quizID, token string) (domain.QuizAttempt, error) {
	var (
		id  string
		raw []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, data FROM quiz_attempts WHERE quiz_id=$1 AND attempt_token=$2`,
		quizID, token).Scan(&id, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.QuizAttempt{}, domain.ErrAttemptNotFound
		}
		return domain.QuizAttempt{}, fmt.Errorf("get attempt by token: %w", err)
	}
	return decodeAttempt(id, raw)
}

func (s *AttemptStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.QuizAttempt, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, data FROM quiz_attempts WHERE quiz_id=$1 ORDER BY created_at DESC, id`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.QuizAttempt
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt, err := decodeAttempt(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func decodeAttempt(id string, raw []byte) (domain.QuizAttempt, error) {
	var attempt domain.QuizAttempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("decode attempt: %w", err)
	}
	attempt.ID = id
	return attempt, nil
}
