// Package cli implements the sebastiand subcommands.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/bankborjam/sebastian/internal/api/handlers"
	"github.com/bankborjam/sebastian/internal/config"
	"github.com/bankborjam/sebastian/internal/database"
	"github.com/bankborjam/sebastian/internal/domain"
	"github.com/bankborjam/sebastian/internal/embedding"
	"github.com/bankborjam/sebastian/internal/llm"
	"github.com/bankborjam/sebastian/internal/repository"
	"github.com/bankborjam/sebastian/internal/server"
	"github.com/bankborjam/sebastian/internal/service"
	"github.com/bankborjam/sebastian/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the Sebastián assistant API server on the configured port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides config)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool)

	embeddingCache := embedding.NewCache(cfg)
	llmCache := llm.NewCache(cfg)

	embedder, err := embeddingCache.Get()
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	generator, err := llmCache.Get()
	if err != nil {
		return fmt.Errorf("failed to create generation provider: %w", err)
	}

	retriever := service.NewRetriever(embedder, chunkRepo, service.RetrieverConfig{
		K:          cfg.RetrieverK,
		FetchK:     cfg.RetrieverFetchK,
		LambdaMult: cfg.LambdaMult,
	})

	interactionLogger := service.NewInteractionLogger(cfg.InteractionLogPath)

	ragSvc := service.NewRAGService(retriever, generator, interactionLogger, domain.ModelInfo{
		LLMModel:           cfg.LLMModel(),
		EmbeddingModel:     cfg.EmbeddingModel(),
		EmbeddingDimension: embedder.Dimension(),
		Mode:               cfg.Mode,
	})

	chatHandler := handlers.NewChatHandler(ragSvc)
	healthHandler := handlers.NewHealthHandler(chunkRepo, embedder, generator, handlers.StatsConfig{
		Mode:         cfg.Mode,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		RetrieverK:   cfg.RetrieverK,
		FetchK:       cfg.RetrieverFetchK,
		LambdaMult:   cfg.LambdaMult,
	})

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:   chatHandler,
		HealthHandler: healthHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s (mode: %s)", cfg.Port, cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	log.Printf("migrations up to date (version: %d, dirty: %v)", version, dirty)
	return nil
}
