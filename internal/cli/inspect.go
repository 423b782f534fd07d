package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankborjam/sebastian/internal/config"
	"github.com/bankborjam/sebastian/internal/database"
	"github.com/bankborjam/sebastian/internal/embedding"
	"github.com/bankborjam/sebastian/internal/repository"
	"github.com/bankborjam/sebastian/internal/service"
)

// InspectCmd returns the inspect command
func InspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print vector-store stats and optionally run a probe search",
		RunE:  runInspect,
	}

	cmd.Flags().StringP("query", "q", "", "Run a probe search with this query")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	chunkRepo := repository.NewChunkRepository(pool)

	count, err := chunkRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "chunks: %d\n", count)

	meta, err := chunkRepo.GetIndexMeta(ctx)
	if err != nil {
		return fmt.Errorf("failed to read index meta: %w", err)
	}
	if meta == nil {
		fmt.Fprintln(out, "index: never built")
	} else {
		fmt.Fprintf(out, "embedding model: %s (%d dims)\n", meta.EmbeddingModel, meta.EmbeddingDimension)
		fmt.Fprintf(out, "built at: %s\n", meta.BuiltAt.Format(time.RFC3339))
	}

	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		return nil
	}

	embedder, err := embedding.NewCache(cfg).Get()
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	retriever := service.NewRetriever(embedder, chunkRepo, service.RetrieverConfig{
		K:          cfg.RetrieverK,
		FetchK:     cfg.RetrieverFetchK,
		LambdaMult: cfg.LambdaMult,
	})

	chunks, err := retriever.Retrieve(ctx, query)
	if err != nil {
		return fmt.Errorf("probe search failed: %w", err)
	}

	fmt.Fprintf(out, "\nprobe query: %q (%d results)\n", query, len(chunks))
	for i, chunk := range chunks {
		preview := chunk.Content
		if len([]rune(preview)) > 120 {
			preview = string([]rune(preview)[:120]) + "..."
		}
		fmt.Fprintf(out, "%d. [%s / %s] score=%.3f %s\n", i+1, chunk.Source, chunk.Section, chunk.RelevanceScore, preview)
	}

	return nil
}
