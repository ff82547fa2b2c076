package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"knowme-quiz-service/internal/domain"
)

// CreatorStore persists registered creator accounts.
type CreatorStore struct {
	pool *pgxpool.Pool
}

func NewCreatorStore(pool *pgxpool.Pool) *CreatorStore {
	return &CreatorStore{pool: pool}
}

func (s *CreatorStore) CreateCreator(ctx context.Context, creator domain.Creator) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO creators (name, password_hash, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`,
		creator.Name, creator.PasswordHash, creator.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert creator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCreatorExists
	}
	return nil
}

func (s *CreatorStore) GetCreator(ctx context.Context, name string) (domain.Creator, error) {
	var creator domain.Creator
	err := s.pool.QueryRow(ctx,
		`SELECT name, password_hash, created_at FROM creators WHERE name=$1`, name).
		Scan(&creator.Name, &creator.PasswordHash, &creator.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Creator{}, domain.ErrCreatorNotFound
		}
		return domain.Creator{}, fmt.Errorf("get creator: %w", err)
	}
	return creator, nil
}
