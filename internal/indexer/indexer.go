// Package indexer implements the offline corpus rebuild: Markdown documents
// are split along their header structure, oversized sections are re-split
// with overlap, chunks get provenance metadata and embeddings, and the full
// set replaces the vector store contents.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bankborjam/sebastian/internal/domain"
	"github.com/bankborjam/sebastian/internal/repository"
)

// A header section longer than oversizeFactor times the chunk size is
// re-split with the recursive splitter.
const oversizeFactor = 1.5

// EmbeddingProvider is the slice of the embedding provider the indexer needs.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelName() string
}

// ChunkStore is the slice of the vector store the indexer writes to.
type ChunkStore interface {
	ReplaceAll(ctx context.Context, chunks []domain.Chunk, meta repository.IndexMeta) error
}

// Report summarizes one rebuild run. Skipped files are a partial success,
// reported rather than swallowed.
type Report struct {
	FilesProcessed int
	FilesSkipped   int
	TotalChunks    int
	Sections       []string
	Warnings       []string
	Duration       time.Duration
}

// Indexer rebuilds the vector store from a Markdown corpus directory.
type Indexer struct {
	embedder  EmbeddingProvider
	store     ChunkStore
	chunkSize int
	splitter  *Splitter
}

func New(embedder EmbeddingProvider, store ChunkStore, chunkSize, chunkOverlap int) *Indexer {
	return &Indexer{
		embedder:  embedder,
		store:     store,
		chunkSize: chunkSize,
		splitter:  NewSplitter(chunkSize, chunkOverlap),
	}
}

// BuildIndex processes every Markdown file under corpusRoot and replaces the
// store contents with the resulting chunks. An empty corpus is an error and
// leaves the store untouched.
func (ix *Indexer) BuildIndex(ctx context.Context, corpusRoot string) (*Report, error) {
	start := time.Now()

	files, err := filepath.Glob(filepath.Join(corpusRoot, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no markdown files found in %s", corpusRoot)
	}
	sort.Strings(files)

	report := &Report{}
	sections := make(map[string]struct{})

	var chunks []domain.Chunk
	for _, file := range files {
		fileChunks, err := ix.processFile(file)
		if err != nil {
			warning := fmt.Sprintf("skipping %s: %v", filepath.Base(file), err)
			log.Printf("indexer: %s", warning)
			report.Warnings = append(report.Warnings, warning)
			report.FilesSkipped++
			continue
		}
		report.FilesProcessed++
		for _, c := range fileChunks {
			sections[c.Section] = struct{}{}
		}
		chunks = append(chunks, fileChunks...)
	}

	if len(chunks) == 0 {
		return nil, errors.New("no chunks produced from corpus, store left unchanged")
	}

	for i := range chunks {
		vec, err := ix.embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %s: %w", chunks[i].ChunkID, err)
		}
		chunks[i].Embedding = vec
	}

	meta := repository.IndexMeta{
		EmbeddingModel:     ix.embedder.ModelName(),
		EmbeddingDimension: ix.embedder.Dimension(),
		BuiltAt:            time.Now().UTC(),
	}
	if err := ix.store.ReplaceAll(ctx, chunks, meta); err != nil {
		return nil, fmt.Errorf("failed to write chunks to store: %w", err)
	}

	report.TotalChunks = len(chunks)
	for section := range sections {
		report.Sections = append(report.Sections, section)
	}
	sort.Strings(report.Sections)
	report.Duration = time.Since(start)

	return report, nil
}

// processFile splits one Markdown document into metadata-carrying chunks.
// Chunk ids are deterministic: <stem>_<sectionIdx> for whole sections and
// <stem>_<sectionIdx>_<subIdx> for re-split pieces, so rebuilds of the same
// file produce the same ids.
func (ix *Indexer) processFile(path string) ([]domain.Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("file is empty")
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	source := filepath.Base(path)

	var chunks []domain.Chunk
	for i, section := range splitByHeaders(text) {
		meta := domain.Chunk{
			Source:      source,
			Section:     orDefault(section.H1, domain.DefaultSection),
			Subsection:  orDefault(section.H2, domain.DefaultSubsection),
			Category:    orDefault(section.H3, domain.DefaultSubsection),
			ContentType: classifyContent(section.Content),
		}

		if len([]rune(section.Content)) > int(float64(ix.chunkSize)*oversizeFactor) {
			for j, piece := range ix.splitter.Split(section.Content) {
				chunk := meta
				chunk.ChunkID = fmt.Sprintf("%s_%d_%d", stem, i, j)
				chunk.ChunkIndex = j
				chunk.Content = piece
				chunks = append(chunks, chunk)
			}
		} else {
			chunk := meta
			chunk.ChunkID = fmt.Sprintf("%s_%d", stem, i)
			chunk.ChunkIndex = 0
			chunk.Content = section.Content
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
