package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"knowme-quiz-service/internal/domain"
)

// FeedbackStore persists results-screen feedback scoped under its quiz.
type FeedbackStore struct {
	pool *pgxpool.Pool
}

func NewFeedbackStore(pool *pgxpool.Pool) *FeedbackStore {
	return &FeedbackStore{pool: pool}
}

func (s *FeedbackStore) CreateFeedback(ctx context.Context, quizID string, fb domain.Feedback) (string, error) {
	fb.ID = uuid.NewString()
	data, err := json.Marshal(fb)
	if err != nil {
		return "", fmt.Errorf("encode feedback: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_feedback (id, quiz_id, created_at, data) VALUES ($1, $2, $3, $4)`,
		fb.ID, quizID, fb.CreatedAt, data)
	if err != nil {
		return "", fmt.Errorf("insert feedback: %w", err)
	}
	return fb.ID, nil
}

func (s *FeedbackStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.Feedback, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, data FROM quiz_feedback WHERE quiz_id=$1 ORDER BY created_at DESC, id`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		var fb domain.Feedback
		if err := json.Unmarshal(raw, &fb); err != nil {
			return nil, fmt.Errorf("decode feedback: %w", err)
		}
		fb.ID = id
		out = append(out, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}
