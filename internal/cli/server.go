package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gameroom-service/internal/app"
	"gameroom-service/internal/config"
	"gameroom-service/internal/content"
	"gameroom-service/internal/infra/memory"
	"gameroom-service/internal/infra/postgres"
	redisinfra "gameroom-service/internal/infra/redis"
	"gameroom-service/internal/observability"
	transport "gameroom-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string, envPort string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", envPort, "port to listen on (overrides server.port)")
	return cmd
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// contentSource is what both the CSV pair and Postgres can provide.
type contentSource interface {
	content.TopicLoader
	memory.QuestionLoader
}

type csvSource struct {
	*content.CSVTopicLoader
	*content.CSVQuestionLoader
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var source contentSource = csvSource{
		CSVTopicLoader:    content.NewCSVTopicLoader(cfg.Content.TopicsPath),
		CSVQuestionLoader: content.NewCSVQuestionLoader(cfg.Content.QuestionsPath),
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		source = postgres.NewContentLoader(pool)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)

	var questions app.QuestionRepository
	if redisClient != nil {
		questions = redisinfra.NewQuestionRepository(redisClient, source, contentTTL)
	} else {
		questions = memory.NewQuestionRepository(source, contentTTL)
	}

	occupancy := app.NewOccupancy()
	sessions := func(namespace string) app.SessionRepository {
		if redisClient != nil {
			return occupancy.Track(redisinfra.NewSessionStore(redisClient, redisTTL, namespace))
		}
		return occupancy.Track(memory.NewSessionStore())
	}

	chatLog := logger.Named("chat")
	riddleLog := logger.Named("riddle")
	triviaLog := logger.Named("trivia")
	chatHub := transport.NewHub("chat", chatLog)
	riddleHub := transport.NewHub("riddle", riddleLog)
	triviaHub := transport.NewHub("trivia", triviaLog)

	waiting := memory.NewWaitingRoom()
	chat := app.NewChatService(sessions("chat"), chatHub, cfg.Chat.Rooms, chatLog).WithOccupancy(occupancy)
	riddle := app.NewRiddleService(sessions("riddle"), riddleHub, riddleLog).WithOccupancy(occupancy)
	trivia := app.NewTriviaService(app.TriviaDeps{
		Sessions:  sessions("trivia"),
		Waiting:   waiting,
		Matches:   memory.NewMatchStore(),
		Topics:    content.NewTopicStore(source, waiting),
		Questions: questions,
		Out:       triviaHub,
		Logger:    triviaLog,
		Occupancy: occupancy,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/chat", transport.NewWSHandler(chat, chatHub, chatLog).ServeWS)
	mux.HandleFunc("/ws/riddle", transport.NewWSHandler(riddle, riddleHub, riddleLog).ServeWS)
	mux.HandleFunc("/ws/trivia", transport.NewWSHandler(trivia, triviaHub, triviaLog).ServeWS)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting game server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
