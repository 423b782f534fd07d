package domain

// Chunk is the atomic indexed unit: a bounded slice of a source document
// stored with its provenance metadata and embedding.
type Chunk struct {
	ChunkID     string
	Source      string
	Section     string
	Subsection  string
	Category    string
	ContentType string
	ChunkIndex  int
	Content     string
	Embedding   []float32

	// RelevanceScore is populated at retrieval time, never at index time.
	RelevanceScore float32
}

// ContentType classification tags attached by the indexer.
const (
	ContentTypeRequirements = "requirements"
	ContentTypePricing      = "pricing"
	ContentTypeProcedure    = "procedure"
	ContentTypeFeatures     = "features"
	ContentTypeGeneral      = "general"
)

// Defaults for structural metadata when a header level is absent.
const (
	DefaultSection    = "General"
	DefaultSubsection = "N/A"
)
