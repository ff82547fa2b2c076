package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"knowme-quiz-service/internal/app"
	"knowme-quiz-service/internal/config"
	infrapg "knowme-quiz-service/internal/infra/postgres"
)

// NewBackfillCmd assigns short codes to quizzes created before the field
// existed. One-off maintenance, safe to re-run.
func NewBackfillCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-codes",
		Short: "Assign short codes to quizzes that predate them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), *configPath)
		},
	}
}

func runBackfill(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	quizzes := infrapg.NewQuizStore(pool)
	service := app.NewQuizService(quizzes, app.NewShortCodeGenerator(quizzes), nil)

	updated, err := service.BackfillShortCodes(ctx)
	if err != nil {
		return err
	}
	log.Printf("backfill complete, %d quizzes updated", updated)
	return nil
}
