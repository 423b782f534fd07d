package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bankborjam/sebastian/internal/config"
	"github.com/bankborjam/sebastian/internal/database"
	"github.com/bankborjam/sebastian/internal/embedding"
	"github.com/bankborjam/sebastian/internal/indexer"
	"github.com/bankborjam/sebastian/internal/repository"
)

const watchDebounce = 2 * time.Second

// IndexCmd returns the index command
func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the vector store from the Markdown corpus",
		Long:  "Chunk, embed and store the Markdown corpus, replacing any existing index",
		RunE:  runIndex,
	}

	cmd.Flags().Bool("force", false, "Rebuild even if the store already holds an index")
	cmd.Flags().Bool("watch", false, "Keep running and rebuild when the corpus directory changes")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
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

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	chunkRepo := repository.NewChunkRepository(pool)

	embedder, err := embedding.NewCache(cfg).Get()
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	if err := embedder.ValidateConnection(ctx); err != nil {
		return fmt.Errorf("embedding provider is not reachable: %w", err)
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		count, err := chunkRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to inspect store: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("store already holds %d chunks, pass --force to rebuild", count)
		}
	}

	ix := indexer.New(embedder, chunkRepo, cfg.ChunkSize, cfg.ChunkOverlap)

	if err := buildAndReport(ctx, ix, cfg.DocsPath); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}

	return watchCorpus(ctx, ix, cfg.DocsPath)
}

func buildAndReport(ctx context.Context, ix *indexer.Indexer, corpusRoot string) error {
	report, err := ix.BuildIndex(ctx, corpusRoot)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	log.Printf("indexed %d chunks from %d files in %s",
		report.TotalChunks, report.FilesProcessed, report.Duration.Round(time.Millisecond))
	if report.FilesSkipped > 0 {
		log.Printf("skipped %d files", report.FilesSkipped)
	}
	for _, warning := range report.Warnings {
		log.Printf("warning: %s", warning)
	}
	log.Printf("sections: %s", strings.Join(report.Sections, ", "))
	return nil
}

// watchCorpus rebuilds the index whenever Markdown files under the corpus
// directory change. Events are debounced so editors that write in several
// steps trigger a single rebuild.
func watchCorpus(ctx context.Context, ix *indexer.Indexer, corpusRoot string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(corpusRoot); err != nil {
		return fmt.Errorf("failed to watch %s: %w", corpusRoot, err)
	}
	log.Printf("watching %s for changes", corpusRoot)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var debounce *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case <-rebuild:
			log.Println("corpus changed, rebuilding index")
			if err := buildAndReport(ctx, ix, corpusRoot); err != nil {
				log.Printf("rebuild failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)

		case <-quit:
			log.Println("stopping watcher")
			return nil
		}
	}
}
