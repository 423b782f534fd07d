package service

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/bankborjam/sebastian/internal/domain"
)

// Confidence heuristic shape: a base value plus bounded additive boosts,
// capped strictly below certainty. The boosts are monotonic with
// diminishing returns; this is a design heuristic, not a calibrated
// probability.
const (
	confidenceBase      = 0.6
	confidenceCap       = 0.95
	perChunkBoost       = 0.05
	maxChunkBoost       = 0.2
	maxLengthBoost      = 0.1
	perSectionBoost     = 0.02
	maxSectionBoost     = 0.1
	sourcePreviewBudget = 400
)

// greetingIndicators make greeting injection idempotent: if the generated
// answer already greets, nothing is prepended.
var greetingIndicators = []string{"buenos días", "buenas tardes", "buenas noches", "hola", "saludos"}

// timeGreeting picks the greeting band for the hour: [5,12) morning,
// [12,19) afternoon, evening otherwise. The partition is half-open on both
// boundaries, so exactly 12:00 is afternoon and exactly 19:00 is evening.
func timeGreeting(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return "¡Buenos días!"
	case hour >= 12 && hour < 19:
		return "¡Buenas tardes!"
	default:
		return "¡Buenas noches!"
	}
}

// InjectGreeting prepends a time-of-day greeting and introduction to the
// answer unless it already contains a greeting term. Idempotent.
func InjectGreeting(answer string, now time.Time) string {
	lower := strings.ToLower(answer)
	for _, indicator := range greetingIndicators {
		if strings.Contains(lower, indicator) {
			return answer
		}
	}
	return fmt.Sprintf("%s Soy Sebastián, tu asistente virtual de Bank BorjaM.\n\n%s", timeGreeting(now), answer)
}

// CalculateConfidence derives a confidence score from retrieval statistics:
// 0.0 with no chunks, otherwise base plus capped boosts for chunk count,
// average content length, and structured section metadata.
func CalculateConfidence(chunks []domain.Chunk) float64 {
	if len(chunks) == 0 {
		return 0.0
	}

	chunkBoost := math.Min(float64(len(chunks))*perChunkBoost, maxChunkBoost)

	totalLength := 0
	withSection := 0
	for _, chunk := range chunks {
		totalLength += len(chunk.Content)
		if chunk.Section != "" && chunk.Section != domain.DefaultSection {
			withSection++
		}
	}
	avgLength := float64(totalLength) / float64(len(chunks))
	lengthBoost := math.Min(avgLength/1000*0.1, maxLengthBoost)
	sectionBoost := math.Min(float64(withSection)*perSectionBoost, maxSectionBoost)

	confidence := math.Min(confidenceBase+chunkBoost+lengthBoost+sectionBoost, confidenceCap)
	return math.Round(confidence*100) / 100
}

// FormatSources converts retrieved chunks to client-facing citations:
// 1-based ids in retrieval order, previews truncated to a fixed budget with
// an ellipsis marker, and filenames reduced to their basename.
func FormatSources(chunks []domain.Chunk) []domain.SourceInfo {
	sources := make([]domain.SourceInfo, 0, len(chunks))
	for i, chunk := range chunks {
		content := chunk.Content
		if runes := []rune(content); len(runes) > sourcePreviewBudget {
			content = string(runes[:sourcePreviewBudget]) + "..."
		}

		info := domain.SourceInfo{
			ID:         i + 1,
			Source:     filepath.Base(chunk.Source),
			Section:    orNA(chunk.Section),
			Subsection: orNA(chunk.Subsection),
			Content:    content,
			ChunkID:    chunk.ChunkID,
		}
		if chunk.RelevanceScore > 0 {
			score := chunk.RelevanceScore
			info.RelevanceScore = &score
		}
		sources = append(sources, info)
	}
	return sources
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return domain.DefaultSubsection
	}
	return value
}
