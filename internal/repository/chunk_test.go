//go:build integration

package repository

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankborjam/sebastian/internal/domain"
	"github.com/bankborjam/sebastian/internal/testutil"
)

func testChunk(id string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ChunkID:     id,
		Source:      "cuentas.md",
		Section:     "Cuentas",
		Subsection:  "N/A",
		Category:    "N/A",
		ContentType: "general",
		Content:     "Contenido de prueba para " + id,
		Embedding:   embedding,
	}
}

func testMeta(dim, count int) IndexMeta {
	return IndexMeta{
		EmbeddingModel:     "test-embed",
		EmbeddingDimension: dim,
		ChunkCount:         count,
	}
}

func TestChunkRepository_ReplaceAllAndCount(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	meta, err := repo.GetIndexMeta(ctx)
	require.NoError(t, err)
	assert.Nil(t, meta)

	chunks := []domain.Chunk{
		testChunk("cuentas_0", []float32{1, 0, 0}),
		testChunk("cuentas_1", []float32{0, 1, 0}),
		testChunk("cuentas_2", []float32{0, 0, 1}),
	}
	require.NoError(t, repo.ReplaceAll(ctx, chunks, testMeta(3, len(chunks))))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	meta, err = repo.GetIndexMeta(ctx)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "test-embed", meta.EmbeddingModel)
	assert.Equal(t, 3, meta.EmbeddingDimension)
	assert.Equal(t, 3, meta.ChunkCount)
	assert.False(t, meta.BuiltAt.IsZero())

	// A rebuild replaces everything, it never accumulates.
	replacement := []domain.Chunk{testChunk("tarjetas_0", []float32{1, 1, 0})}
	require.NoError(t, repo.ReplaceAll(ctx, replacement, testMeta(3, 1)))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	meta, err = repo.GetIndexMeta(ctx)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, 1, meta.ChunkCount)
}

func TestChunkRepository_ReplaceAllBatches(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	// More chunks than one insert batch.
	chunks := make([]domain.Chunk, 0, insertBatchSize+50)
	for i := 0; i < insertBatchSize+50; i++ {
		chunks = append(chunks, testChunk("doc_"+strconv.Itoa(i), []float32{float32(i), 1, 0}))
	}
	require.NoError(t, repo.ReplaceAll(ctx, chunks, testMeta(3, len(chunks))))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, insertBatchSize+50, count)
}

func TestChunkRepository_SearchCandidates(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	chunks := []domain.Chunk{
		testChunk("exacto", []float32{1, 0, 0}),
		testChunk("cercano", []float32{0.9, 0.1, 0}),
		testChunk("lejano", []float32{0, 0, 1}),
	}
	require.NoError(t, repo.ReplaceAll(ctx, chunks, testMeta(3, len(chunks))))

	candidates, err := repo.SearchCandidates(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Cosine order: exact match first, then the near neighbor.
	assert.Equal(t, "exacto", candidates[0].Chunk.ChunkID)
	assert.Equal(t, "cercano", candidates[1].Chunk.ChunkID)
	assert.InDelta(t, 1.0, candidates[0].Score, 1e-6)
	assert.Greater(t, candidates[0].Score, candidates[1].Score)

	// Stored embeddings come back for the MMR re-ranker.
	require.Len(t, candidates[0].Embedding, 3)
	assert.InDelta(t, 1.0, candidates[0].Embedding[0], 1e-6)

	assert.Equal(t, "Cuentas", candidates[0].Chunk.Section)
	assert.Equal(t, "cuentas.md", candidates[0].Chunk.Source)
}
