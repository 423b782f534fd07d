package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bankborjam/sebastian/internal/domain"
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

func postAsk(t *testing.T, handler *ChatHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	handler.Ask(w, req)
	return w
}

func TestAsk_Success(t *testing.T) {
	svc := new(MockAskService)
	answer := &domain.Answer{
		Answer:     "La tarjeta joven no tiene costo.",
		Sources:    []domain.SourceInfo{{ID: 1, Source: "tarjetas.md", Section: "Tarjetas"}},
		Confidence: 0.78,
	}
	svc.On("Ask", mock.Anything, mock.MatchedBy(func(input service.AskInput) bool {
		return input.Question == "¿tarjetas?" &&
			input.SessionID == "s-1" &&
			input.IsFirstMessage &&
			len(input.History) == 1 &&
			input.History[0].Role == domain.RoleUser
	})).Return(answer, nil)

	w := postAsk(t, NewChatHandler(svc), AskRequest{
		Question:            "¿tarjetas?",
		SessionID:           "s-1",
		IsFirstMessage:      true,
		ConversationHistory: []TurnRequest{{Role: "user", Content: "hola"}},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data domain.Answer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "La tarjeta joven no tiene costo.", resp.Data.Answer)
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, "tarjetas.md", resp.Data.Sources[0].Source)
	svc.AssertExpectations(t)
}

func TestAsk_InvalidBody(t *testing.T) {
	svc := new(MockAskService)
	handler := NewChatHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAsk_ValidationErrorMapsTo400(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ask", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyQuestion)

	w := postAsk(t, NewChatHandler(svc), AskRequest{Question: ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "question cannot be empty", resp.Error)
}

func TestAsk_StoreEmptyMapsTo503(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ask", mock.Anything, mock.Anything).Return(nil, domain.ErrStoreEmpty)

	w := postAsk(t, NewChatHandler(svc), AskRequest{Question: "¿tarjetas?"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAsk_ProviderErrorMapsTo502WithoutLeakingCause(t *testing.T) {
	svc := new(MockAskService)
	svc.On("Ask", mock.Anything, mock.Anything).Return(nil,
		domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "generation provider call failed",
			assert.AnError))

	w := postAsk(t, NewChatHandler(svc), AskRequest{Question: "¿tarjetas?"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
	assert.Contains(t, w.Body.String(), "generation provider call failed")
}
