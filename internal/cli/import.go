package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gameroom-service/internal/config"
	"gameroom-service/internal/content"
	"gameroom-service/internal/infra/postgres"
)

// NewImportCmd copies the CSV topic and question files into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var topicsPath, questionsPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load topics and questions from CSV into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if topicsPath != "" {
				cfg.Content.TopicsPath = topicsPath
			}
			if questionsPath != "" {
				cfg.Content.QuestionsPath = questionsPath
			}
			return runImport(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&topicsPath, "topics", "", "topics CSV (defaults to content.topics_path)")
	cmd.Flags().StringVar(&questionsPath, "questions", "", "questions CSV (defaults to content.questions_path)")
	return cmd
}

func runImport(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Content.TopicsPath == "" || cfg.Content.QuestionsPath == "" {
		return fmt.Errorf("both topics and questions CSV paths are required")
	}
	topics, err := content.NewCSVTopicLoader(cfg.Content.TopicsPath).LoadTopics(ctx)
	if err != nil {
		return err
	}
	questions, err := content.NewCSVQuestionLoader(cfg.Content.QuestionsPath).LoadQuestions(ctx)
	if err != nil {
		return err
	}

	if err := runMigrations(ctx, cfg, logger); err != nil {
		return err
	}
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.NewImporter(db).Import(ctx, topics, questions); err != nil {
		return fmt.Errorf("import content: %w", err)
	}
	logger.Info("content imported",
		zap.Int("topics", len(topics)),
		zap.Int("questions", len(questions)))
	return nil
}
