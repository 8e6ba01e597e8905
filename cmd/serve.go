package cmd

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/analytics"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/api"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/chart"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/config"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/genai"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the media kit API server. Serves influencer profiles, the chat
endpoint backed by the graph pipeline, and a health check.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	if err := validateDialect(cfg.Database.Dialect); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	llm, err := genai.NewClient(ctx, genai.Config{
		APIKey: cfg.LLM.APIKey,
		Model:  cfg.LLM.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create text generation client: %w", err)
	}
	defer llm.Close()

	if err := llm.IsAPIKeyValid(ctx); err != nil {
		return fmt.Errorf("gemini API key validation failed: %w", err)
	}

	renderer := chart.NewTieredRenderer(cfg.Chart.Width, cfg.Chart.Height, cfg.Chart.Theme, cfg.Chart.FontPath)

	pipeline := analytics.NewPipeline(
		analytics.NewIntentClassifier(llm, cfg.LLM.ClassifierMaxTokens),
		analytics.NewSQLSynthesizer(llm, cfg.LLM.SynthesizerMaxTokens),
		db,
		renderer,
		analytics.NewRetriever(db, llm),
		analytics.NewAnswerer(db, llm, cfg.LLM.AnswerMaxTokens),
	)

	server := api.NewServer(pipeline, db, cfg.Server)

	log.Printf("INFO: Starting server on %s", cfg.Server.ListenAddr)
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("INFO: Server stopped.")
	return nil
}
