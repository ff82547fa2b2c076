package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createCoreTablesSQL = `
CREATE TABLE IF NOT EXISTS quizzes (
    id           text PRIMARY KEY,
    short_code   text,
    creator_id   text NOT NULL DEFAULT '',
    creator_name text NOT NULL DEFAULT '',
    created_at   timestamptz NOT NULL DEFAULT now(),
    data         jsonb NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS quizzes_short_code_key
    ON quizzes (short_code) WHERE short_code IS NOT NULL;
CREATE INDEX IF NOT EXISTS quizzes_creator_idx
    ON quizzes (creator_id, created_at DESC);

CREATE TABLE IF NOT EXISTS quiz_attempts (
    id            text PRIMARY KEY,
    quiz_id       text NOT NULL,
    attempt_token text NOT NULL DEFAULT '',
    created_at    timestamptz NOT NULL DEFAULT now(),
    data          jsonb NOT NULL
);

CREATE INDEX IF NOT EXISTS quiz_attempts_quiz_idx
    ON quiz_attempts (quiz_id, created_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS quiz_attempts_token_key
    ON quiz_attempts (quiz_id, attempt_token) WHERE attempt_token <> '';

CREATE TABLE IF NOT EXISTS quiz_feedback (
    id         text PRIMARY KEY,
    quiz_id    text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT now(),
    data       jsonb NOT NULL
);

CREATE INDEX IF NOT EXISTS quiz_feedback_quiz_idx
    ON quiz_feedback (quiz_id, created_at DESC);

CREATE TABLE IF NOT EXISTS creators (
    name          text PRIMARY KEY,
    password_hash bytea NOT NULL,
    created_at    timestamptz NOT NULL DEFAULT now()
);
`

const dropCoreTablesSQL = `
DROP TABLE IF EXISTS creators;
DROP TABLE IF EXISTS quiz_feedback;
DROP TABLE IF EXISTS quiz_attempts;
DROP TABLE IF EXISTS quizzes;
`

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createCoreTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, dropCoreTablesSQL)
			return err
		},
	)
}
