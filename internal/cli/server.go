package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"knowme-quiz-service/internal/app"
	"knowme-quiz-service/internal/config"
	"knowme-quiz-service/internal/infra/memory"
	infrapg "knowme-quiz-service/internal/infra/postgres"
	infraredis "knowme-quiz-service/internal/infra/redis"
	transport "knowme-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		quizStore     app.QuizStore
		attemptStore  app.AttemptStore
		feedbackStore app.FeedbackStore
		creatorStore  app.CreatorStore
	)
	if pool != nil {
		quizStore = infrapg.NewQuizStore(pool)
		attemptStore = infrapg.NewAttemptStore(pool)
		feedbackStore = infrapg.NewFeedbackStore(pool)
		creatorStore = infrapg.NewCreatorStore(pool)
	} else {
		log.Printf("no postgres url configured, using in-memory stores")
		quizStore = memory.NewQuizStore()
		attemptStore = memory.NewAttemptStore()
		feedbackStore = memory.NewFeedbackStore()
		creatorStore = memory.NewCreatorStore()
	}

	// Join traffic reads the same quiz over and over; put Redis in front
	// of it when available.
	var quizReader app.QuizReader = quizStore
	if redisClient != nil {
		cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
		quizReader = infraredis.NewQuizCache(redisClient, quizStore, cacheTTL)
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 30*24*time.Hour)
	var (
		draftStore   app.DraftStore
		sessionStore app.SessionStore
	)
	if redisClient != nil {
		draftStore = infraredis.NewDraftStore(redisClient, app.DraftTTL)
		sessionStore = infraredis.NewSessionStore(redisClient, sessionTTL)
	} else {
		draftStore = memory.NewDraftStore()
		sessionStore = memory.NewSessionStore()
	}

	codes := app.NewShortCodeGenerator(quizStore)
	quizService := app.NewQuizService(quizStore, codes, draftStore)
	attemptService := app.NewAttemptService(quizReader, attemptStore)
	feedbackService := app.NewFeedbackService(quizReader, feedbackStore)
	draftService := app.NewDraftService(draftStore)
	authService := app.NewAuthService(creatorStore, sessionStore)

	handler := transport.NewHandler(quizService, attemptService, feedbackService, draftService, authService)
	feedHandler := transport.NewFeedHandler(quizService, attemptService, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("GET /ws/quizzes/{id}/attempts", feedHandler.ServeFeed)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
