// Package service implements the retrieval-and-answer pipeline: MMR
// retrieval over the vector store, grounded prompt assembly, answer
// post-processing, and the per-request orchestration that ties them
// together.
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bankborjam/sebastian/internal/domain"
)

// ChunkRetriever retrieves ranked chunks for a query.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Chunk, error)
}

// AnswerGenerator produces text from a rendered prompt.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AskInput is the caller-facing request for one question.
type AskInput struct {
	Question       string
	History        []domain.Turn
	SessionID      string
	IsFirstMessage bool
}

// RAGService sequences retrieval, prompt assembly, generation and
// post-processing for each request. Requests are independent; there is no
// shared mutable conversation state.
type RAGService struct {
	retriever ChunkRetriever
	generator AnswerGenerator
	logger    *InteractionLogger
	modelInfo domain.ModelInfo
	now       func() time.Time
}

func NewRAGService(retriever ChunkRetriever, generator AnswerGenerator, logger *InteractionLogger, modelInfo domain.ModelInfo) *RAGService {
	return &RAGService{
		retriever: retriever,
		generator: generator,
		logger:    logger,
		modelInfo: modelInfo,
		now:       time.Now,
	}
}

// Ask runs the full pipeline for one question. Validation failures are
// detected before any provider work; zero retrieved chunks resolve to the
// fixed not-found answer with zero confidence rather than an error, while
// store and provider faults propagate as domain errors.
func (s *RAGService) Ask(ctx context.Context, input AskInput) (*domain.Answer, error) {
	start := s.now()

	question, err := domain.ValidateQuestion(input.Question)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateHistory(input.History); err != nil {
		return nil, err
	}
	// A populated history means this cannot be the first message, whatever
	// the caller claims.
	isFirst := input.IsFirstMessage && len(input.History) == 0

	retrievalStart := s.now()
	chunks, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	retrievalMs := msSince(retrievalStart, s.now())

	var generationMs float64
	var answerText string

	if len(chunks) == 0 {
		// Soft path: nothing relevant in the corpus is a defined outcome,
		// answered with the fixed deflection and no generation call.
		answerText = notFoundAnswer
	} else {
		prompt := AssemblePrompt(question, chunks, input.History)

		generationStart := s.now()
		answerText, err = s.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "generation provider call failed", err)
		}
		generationMs = msSince(generationStart, s.now())
	}

	if isFirst {
		answerText = InjectGreeting(answerText, s.now())
	}

	sources := FormatSources(chunks)
	confidence := CalculateConfidence(chunks)

	answer := &domain.Answer{
		Answer:     answerText,
		Sources:    sources,
		Confidence: confidence,
		Metadata: domain.AnswerMetadata{
			Timestamp:        s.now().UTC(),
			SessionID:        input.SessionID,
			ProcessingTimeMs: msSince(start, s.now()),
			ModelInfo:        s.modelInfo,
			RetrievalStats: domain.RetrievalStats{
				DocsRetrieved:    len(chunks),
				RetrievalTimeMs:  retrievalMs,
				GenerationTimeMs: generationMs,
			},
		},
	}

	s.logInteraction(input, answer)

	return answer, nil
}

// logInteraction appends the analytics record best-effort: a logging
// failure is warned about and never fails the request.
func (s *RAGService) logInteraction(input AskInput, answer *domain.Answer) {
	if s.logger == nil {
		return
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = "anon_" + uuid.NewString()
	}

	entry := InteractionEntry{
		Timestamp:        answer.Metadata.Timestamp,
		SessionID:        sessionID,
		Question:         input.Question,
		Answer:           answer.Answer,
		SourcesCount:     len(answer.Sources),
		Confidence:       answer.Confidence,
		ProcessingTimeMs: answer.Metadata.ProcessingTimeMs,
		ModelInfo:        answer.Metadata.ModelInfo,
	}
	if err := s.logger.Log(entry); err != nil {
		log.Printf("failed to log interaction: %v", err)
	}
}

func msSince(start, end time.Time) float64 {
	return float64(end.Sub(start).Microseconds()) / 1000
}
