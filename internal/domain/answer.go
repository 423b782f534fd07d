package domain

import "time"

// SourceInfo describes one retrieved chunk as cited in an answer.
// IDs are 1-based positions in retrieval order.
type SourceInfo struct {
	ID             int      `json:"id"`
	Source         string   `json:"source"`
	Section        string   `json:"section"`
	Subsection     string   `json:"subsection"`
	Content        string   `json:"content"`
	ChunkID        string   `json:"chunk_id"`
	RelevanceScore *float32 `json:"relevance_score,omitempty"`
}

// ModelInfo records which providers produced an answer.
type ModelInfo struct {
	LLMModel           string `json:"llm_model"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	Mode               string `json:"mode"`
}

// RetrievalStats captures per-request retrieval timing and counts.
type RetrievalStats struct {
	DocsRetrieved    int     `json:"docs_retrieved"`
	RetrievalTimeMs  float64 `json:"retrieval_time_ms"`
	GenerationTimeMs float64 `json:"generation_time_ms"`
}

// AnswerMetadata is the response tracking block attached to every answer.
type AnswerMetadata struct {
	Timestamp        time.Time      `json:"timestamp"`
	SessionID        string         `json:"session_id,omitempty"`
	ProcessingTimeMs float64        `json:"processing_time_ms"`
	ModelInfo        ModelInfo      `json:"model_info"`
	RetrievalStats   RetrievalStats `json:"retrieval_stats"`
}

// Answer is the immutable per-request result: generated text, cited
// sources in retrieval order, and a heuristic confidence in [0, 0.95].
type Answer struct {
	Answer     string         `json:"answer"`
	Sources    []SourceInfo   `json:"sources"`
	Confidence float64        `json:"confidence"`
	Metadata   AnswerMetadata `json:"metadata"`
}
