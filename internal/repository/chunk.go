package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/bankborjam/sebastian/internal/domain"
)

const insertBatchSize = 100

// IndexMeta records what the corpus was last indexed with. The retriever
// checks the dimension here against the configured embedding provider and
// refuses to run on a mismatch.
type IndexMeta struct {
	EmbeddingModel     string
	EmbeddingDimension int
	ChunkCount         int
	BuiltAt            time.Time
}

// Candidate is a chunk returned by similarity search together with its
// stored embedding and cosine similarity to the query. Embeddings are needed
// by the MMR re-ranker.
type Candidate struct {
	Chunk     domain.Chunk
	Embedding []float32
	Score     float32
}

// ChunkRepository persists chunks and their embeddings in Postgres/pgvector.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// ReplaceAll rebuilds the store: all existing chunks and the index meta row
// are deleted, then the new set is written in bounded batches, all inside a
// single transaction so a partial failure never leaves the store
// half-populated.
func (r *ChunkRepository) ReplaceAll(ctx context.Context, chunks []domain.Chunk, meta IndexMeta) error {
	if len(chunks) == 0 {
		return errors.New("refusing to replace store with zero chunks")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM index_meta`); err != nil {
		return fmt.Errorf("failed to clear index meta: %w", err)
	}

	for start := 0; start < len(chunks); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch := &pgx.Batch{}
		for _, c := range chunks[start:end] {
			batch.Queue(
				`INSERT INTO chunks
					(chunk_id, source, section, subsection, category, content_type, chunk_index, content, embedding)
				 VALUES
					($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				c.ChunkID,
				c.Source,
				c.Section,
				c.Subsection,
				c.Category,
				c.ContentType,
				c.ChunkIndex,
				c.Content,
				pgvector.NewVector(c.Embedding),
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range end - start {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert chunk batch: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close chunk batch: %w", err)
		}
	}

	builtAt := meta.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now().UTC()
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO index_meta (embedding_model, embedding_dimension, chunk_count, built_at)
		 VALUES ($1, $2, $3, $4)`,
		meta.EmbeddingModel,
		meta.EmbeddingDimension,
		len(chunks),
		builtAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write index meta: %w", err)
	}

	return tx.Commit(ctx)
}

// SearchCandidates returns the fetchK nearest chunks by cosine distance,
// with embeddings and similarity scores, most similar first.
func (r *ChunkRepository) SearchCandidates(ctx context.Context, embedding []float32, fetchK int) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT chunk_id, source, section, subsection, category, content_type, chunk_index, content, embedding,
		        1 - (embedding <=> $1) AS score
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding),
		fetchK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var cand Candidate
		var vec pgvector.Vector
		err := rows.Scan(
			&cand.Chunk.ChunkID,
			&cand.Chunk.Source,
			&cand.Chunk.Section,
			&cand.Chunk.Subsection,
			&cand.Chunk.Category,
			&cand.Chunk.ContentType,
			&cand.Chunk.ChunkIndex,
			&cand.Chunk.Content,
			&vec,
			&cand.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		cand.Embedding = vec.Slice()
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}

	return candidates, nil
}

// Count returns the number of chunks in the store.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// GetIndexMeta returns the meta row from the last rebuild, or nil when the
// store has never been built.
func (r *ChunkRepository) GetIndexMeta(ctx context.Context) (*IndexMeta, error) {
	var meta IndexMeta
	err := r.pool.QueryRow(ctx,
		`SELECT embedding_model, embedding_dimension, chunk_count, built_at
		 FROM index_meta
		 ORDER BY built_at DESC
		 LIMIT 1`,
	).Scan(&meta.EmbeddingModel, &meta.EmbeddingDimension, &meta.ChunkCount, &meta.BuiltAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index meta: %w", err)
	}
	return &meta, nil
}
