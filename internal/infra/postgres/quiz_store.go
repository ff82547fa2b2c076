package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"knowme-quiz-service/internal/domain"
)

// QuizStore persists quizzes as JSONB documents with the fields the app
// filters on (short code, creator, creation time) extracted into columns.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) (string, error) {
	quiz.ID = uuid.NewString()
	data, err := json.Marshal(quiz)
	if err != nil {
		return "", fmt.Errorf("encode quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, short_code, creator_id, creator_name, created_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		quiz.ID, nullable(quiz.ShortCode), quiz.CreatorID, quiz.CreatorName, quiz.CreatedAt, data)
	if err != nil {
		return "", fmt.Errorf("insert quiz: %w", err)
	}
	return quiz.ID, nil
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(short_code, ''), data FROM quizzes WHERE id=$1`, quizID)
	return scanQuiz(row)
}

func (s *QuizStore) GetQuizByCode(ctx context.Context, code string) (domain.Quiz, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(short_code, ''), data FROM quizzes WHERE short_code=$1`, code)
	return scanQuiz(row)
}

func (s *QuizStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quizzes WHERE short_code=$1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check short code: %w", err)
	}
	return exists, nil
}

func (s *QuizStore) ListByCreator(ctx context.Context, creatorID, creatorName string) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(short_code, ''), data FROM quizzes
		 WHERE (creator_id=$1 AND $1 <> '')
		    OR (creator_id='' AND creator_name=$2 AND $2 <> '')
		 ORDER BY created_at DESC, id`,
		creatorID, creatorName)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	return scanQuizzes(rows)
}

func (s *QuizStore) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("encode quiz: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET short_code=$2, creator_id=$3, creator_name=$4, data=$5 WHERE id=$1`,
		quiz.ID, nullable(quiz.ShortCode), quiz.CreatorID, quiz.CreatorName, data)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) DeleteQuiz(ctx context.Context, quizID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, quizID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) ListMissingCode(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(short_code, ''), data FROM quizzes
		 WHERE short_code IS NULL OR short_code=''
		 ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes missing code: %w", err)
	}
	defer rows.Close()
	return scanQuizzes(rows)
}

func (s *QuizStore) SetShortCode(ctx context.Context, quizID, code string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes
		 SET short_code=$2, data=jsonb_set(data, '{shortCode}', to_jsonb($2::text))
		 WHERE id=$1`,
		quizID, code)
	if err != nil {
		return fmt.Errorf("set short code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row rowScanner) (domain.Quiz, error) {
	var (
		id, code string
		raw      []byte
	)
	if err := row.Scan(&id, &code, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("scan quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz: %w", err)
	}
	quiz.ID = id
	quiz.ShortCode = code
	return quiz, nil
}

func scanQuizzes(rows pgx.Rows) ([]domain.Quiz, error) {
	var out []domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return out, nil
}

// nullable keeps empty short codes out of the partial unique index.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
