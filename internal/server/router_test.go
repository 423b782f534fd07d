package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bankborjam/sebastian/internal/api/handlers"
	"github.com/bankborjam/sebastian/internal/domain"
	"github.com/bankborjam/sebastian/internal/repository"
	"github.com/bankborjam/sebastian/internal/service"
)

type MockAskService struct {
	mock.Mock
}

func (m *MockAskService) Ask(ctx context.Context, input service.AskInput) (*domain.Answer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Answer), args.Error(1)
}

type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkStore) GetIndexMeta(ctx context.Context) (*repository.IndexMeta, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.IndexMeta), args.Error(1)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) ValidateConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockValidator) ModelName() string {
	args := m.Called()
	return args.String(0)
}

func newTestRouter(askSvc *MockAskService) http.Handler {
	store := new(MockChunkStore)
	embedder := new(MockValidator)
	generator := new(MockValidator)
	store.On("Count", mock.Anything).Return(10, nil)
	store.On("GetIndexMeta", mock.Anything).Return(nil, nil)
	embedder.On("ValidateConnection", mock.Anything).Return(nil)
	generator.On("ValidateConnection", mock.Anything).Return(nil)
	generator.On("ModelName").Return("llama3.2:3b")

	return NewRouter(RouterConfig{
		ChatHandler:   handlers.NewChatHandler(askSvc),
		HealthHandler: handlers.NewHealthHandler(store, embedder, generator, handlers.StatsConfig{}),
	})
}

func TestRouter_AskRoute(t *testing.T) {
	askSvc := new(MockAskService)
	askSvc.On("Ask", mock.Anything, mock.Anything).Return(&domain.Answer{Answer: "respuesta"}, nil)

	router := newTestRouter(askSvc)

	body, _ := json.Marshal(map[string]string{"question": "¿tarjetas?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "respuesta")
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter(new(MockAskService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// A caller-provided id is propagated, not replaced.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}

func TestRouter_HealthAndStats(t *testing.T) {
	router := newTestRouter(new(MockAskService))

	for _, path := range []string{"/health", "/stats"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_RejectsOversizedBody(t *testing.T) {
	askSvc := new(MockAskService)
	router := newTestRouter(askSvc)

	huge := strings.NewReader(`{"question":"` + strings.Repeat("a", 2*1024*1024) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", huge)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	askSvc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(new(MockAskService))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
