package service

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/bankborjam/sebastian/internal/domain"
	"github.com/bankborjam/sebastian/internal/repository"
)

// Chunks shorter than this after trimming are noise (bare headers with no
// body) and are dropped after selection.
const minChunkChars = 50

// RetrieverConfig controls MMR retrieval. FetchK candidates are pulled by
// similarity, then K are greedily selected balancing relevance against
// redundancy; LambdaMult in [0,1] weighs relevance (1.0 = plain top-k).
type RetrieverConfig struct {
	K          int
	FetchK     int
	LambdaMult float64
}

// QueryEmbedder embeds query text at retrieval time.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// CandidateStore is the slice of the vector store the retriever reads from.
type CandidateStore interface {
	SearchCandidates(ctx context.Context, embedding []float32, fetchK int) ([]repository.Candidate, error)
	GetIndexMeta(ctx context.Context) (*repository.IndexMeta, error)
}

// Retriever wraps the vector store with an MMR top-k policy and a quality
// post-filter. An empty result is a valid outcome, distinct from store or
// provider failures which surface as domain errors.
type Retriever struct {
	embedder QueryEmbedder
	store    CandidateStore
	cfg      RetrieverConfig

	mu         sync.Mutex
	compatible bool
}

func NewRetriever(embedder QueryEmbedder, store CandidateStore, cfg RetrieverConfig) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
	}
}

// Retrieve returns up to K chunks for the query in MMR rank order, most
// relevant first, with RelevanceScore populated.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.Chunk, error) {
	if err := r.ensureCompatible(ctx); err != nil {
		return nil, err
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "embedding provider call failed", err)
	}

	candidates, err := r.store.SearchCandidates(ctx, embedding, r.cfg.FetchK)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "vector store search failed", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	selected := maximalMarginalRelevance(candidates, r.cfg.K, r.cfg.LambdaMult)

	chunks := make([]domain.Chunk, 0, len(selected))
	for _, cand := range selected {
		if len(strings.TrimSpace(cand.Chunk.Content)) < minChunkChars {
			continue
		}
		chunk := cand.Chunk
		chunk.RelevanceScore = cand.Score
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// ensureCompatible fails loudly when the configured embedding provider's
// dimension does not match the indexed corpus, or when the store was never
// built. Success is cached; failures are re-checked on the next call so a
// rebuild can recover without a restart.
func (r *Retriever) ensureCompatible(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.compatible {
		return nil
	}

	meta, err := r.store.GetIndexMeta(ctx)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "vector store is unavailable", err)
	}
	if meta == nil {
		return domain.ErrStoreEmpty
	}
	if meta.EmbeddingDimension != r.embedder.Dimension() {
		return domain.ErrEmbeddingDimensionSkew
	}

	r.compatible = true
	return nil
}

// Invalidate drops the cached compatibility check, forcing re-validation
// against the store on the next retrieval. Call after an index rebuild.
func (r *Retriever) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compatible = false
}

// maximalMarginalRelevance greedily selects up to k candidates maximizing
// lambda*relevance - (1-lambda)*max-similarity-to-selected. The first pick
// is always the most relevant candidate.
func maximalMarginalRelevance(candidates []repository.Candidate, k int, lambda float64) []repository.Candidate {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]repository.Candidate, 0, k)
	remaining := make([]repository.Candidate, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			redundancy := 0.0
			for _, picked := range selected {
				sim := cosineSimilarity(cand.Embedding, picked.Embedding)
				if sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*float64(cand.Score) - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
