package service

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankborjam/sebastian/internal/domain"
)

func testEntry(session string) InteractionEntry {
	return InteractionEntry{
		Timestamp:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		SessionID:        session,
		Question:         "¿Cuánto cuesta la tarjeta?",
		Answer:           "La tarjeta joven no tiene costo el primer año.",
		SourcesCount:     2,
		Confidence:       0.78,
		ProcessingTimeMs: 412.5,
		ModelInfo: domain.ModelInfo{
			LLMModel:           "llama3.2:3b",
			EmbeddingModel:     "nomic-embed-text",
			EmbeddingDimension: 768,
			Mode:               "local",
		},
	}
}

func TestInteractionLogger_AppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "conversations.jsonl")
	logger := NewInteractionLogger(path)

	require.NoError(t, logger.Log(testEntry("s1")))
	require.NoError(t, logger.Log(testEntry("s2")))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []InteractionEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry InteractionEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, entries, 2)
	assert.Equal(t, "s1", entries[0].SessionID)
	assert.Equal(t, "s2", entries[1].SessionID)
	assert.Equal(t, "¿Cuánto cuesta la tarjeta?", entries[0].Question)
	assert.Equal(t, 768, entries[0].ModelInfo.EmbeddingDimension)
}

func TestInteractionLogger_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "log.jsonl")
	logger := NewInteractionLogger(path)

	require.NoError(t, logger.Log(testEntry("s1")))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestInteractionLogger_ConcurrentWritesDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	logger := NewInteractionLogger(path)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, logger.Log(testEntry("concurrent")))
		}()
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry InteractionEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "line %d is not valid JSON", lines+1)
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, writers, lines)
}
