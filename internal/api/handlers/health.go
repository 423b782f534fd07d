package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bankborjam/sebastian/internal/api"
	"github.com/bankborjam/sebastian/internal/repository"
)

const probeTimeout = 5 * time.Second

type ChunkStore interface {
	Count(ctx context.Context) (int, error)
	GetIndexMeta(ctx context.Context) (*repository.IndexMeta, error)
}

type ConnectionValidator interface {
	ValidateConnection(ctx context.Context) error
	ModelName() string
}

// StatsConfig is the retrieval/chunking configuration reported by /stats.
type StatsConfig struct {
	Mode         string  `json:"mode"`
	ChunkSize    int     `json:"chunk_size"`
	ChunkOverlap int     `json:"chunk_overlap"`
	RetrieverK   int     `json:"retriever_k"`
	FetchK       int     `json:"fetch_k"`
	LambdaMult   float64 `json:"lambda_mult"`
}

type HealthHandler struct {
	store     ChunkStore
	embedder  ConnectionValidator
	generator ConnectionValidator
	stats     StatsConfig
}

func NewHealthHandler(store ChunkStore, embedder, generator ConnectionValidator, stats StatsConfig) *HealthHandler {
	return &HealthHandler{store: store, embedder: embedder, generator: generator, stats: stats}
}

type componentStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

type StatsResponse struct {
	ChunkCount         int         `json:"chunk_count"`
	EmbeddingModel     string      `json:"embedding_model,omitempty"`
	EmbeddingDimension int         `json:"embedding_dimension,omitempty"`
	BuiltAt            *time.Time  `json:"built_at,omitempty"`
	LLMModel           string      `json:"llm_model"`
	Config             StatsConfig `json:"config"`
}

// Health reports per-component status with a degraded/unhealthy rollup. The
// store being empty is degraded, not unhealthy: the service is up but cannot
// answer until the corpus is indexed.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	components := map[string]componentStatus{}
	degraded := false
	unhealthy := false

	count, err := h.store.Count(ctx)
	switch {
	case err != nil:
		components["vectorstore"] = componentStatus{Status: "unhealthy", Detail: "store unreachable"}
		unhealthy = true
	case count == 0:
		components["vectorstore"] = componentStatus{Status: "degraded", Detail: "index is empty"}
		degraded = true
	default:
		components["vectorstore"] = componentStatus{Status: "healthy"}
	}

	if err := h.embedder.ValidateConnection(ctx); err != nil {
		components["embeddings"] = componentStatus{Status: "unhealthy", Detail: "provider unreachable"}
		unhealthy = true
	} else {
		components["embeddings"] = componentStatus{Status: "healthy"}
	}

	if err := h.generator.ValidateConnection(ctx); err != nil {
		components["llm"] = componentStatus{Status: "unhealthy", Detail: "provider unreachable"}
		unhealthy = true
	} else {
		components["llm"] = componentStatus{Status: "healthy"}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if degraded {
		status = "degraded"
	}
	if unhealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	api.JSON(w, httpStatus, HealthResponse{Status: status, Components: components})
}

// Stats reports vector-store and retrieval configuration figures.
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := StatsResponse{
		ChunkCount: count,
		LLMModel:   h.generator.ModelName(),
		Config:     h.stats,
	}

	meta, err := h.store.GetIndexMeta(r.Context())
	if err == nil && meta != nil {
		resp.EmbeddingModel = meta.EmbeddingModel
		resp.EmbeddingDimension = meta.EmbeddingDimension
		builtAt := meta.BuiltAt
		resp.BuiltAt = &builtAt
	}

	api.Success(w, http.StatusOK, resp)
}
