package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate(t *testing.T) {
	var captured ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "La cuenta no tiene costo.", Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:3b")

	out, err := g.Generate(context.Background(), "prompt de prueba")
	require.NoError(t, err)
	assert.Equal(t, "La cuenta no tiene costo.", out)

	assert.Equal(t, "llama3.2:3b", captured.Model)
	assert.Equal(t, "prompt de prueba", captured.Prompt)
	assert.False(t, captured.Stream)
	assert.InDelta(t, generationTemperature, captured.Options["temperature"], 1e-6)
	assert.EqualValues(t, generationMaxTokens, captured.Options["num_predict"])
}

func TestOllamaGenerate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:3b")

	_, err := g.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestOllamaValidateConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:3b")
	assert.NoError(t, g.ValidateConnection(context.Background()))

	srv.Close()
	assert.Error(t, g.ValidateConnection(context.Background()))
}
