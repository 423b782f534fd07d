package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bankborjam/sebastian/internal/api"
	"github.com/bankborjam/sebastian/internal/domain"
	"github.com/bankborjam/sebastian/internal/service"
)

type AskService interface {
	Ask(ctx context.Context, input service.AskInput) (*domain.Answer, error)
}

type ChatHandler struct {
	svc AskService
}

func NewChatHandler(svc AskService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type TurnRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AskRequest struct {
	Question            string        `json:"question"`
	ConversationHistory []TurnRequest `json:"conversation_history,omitempty"`
	SessionID           string        `json:"session_id,omitempty"`
	IsFirstMessage      bool          `json:"is_first_message,omitempty"`
}

// Ask answers one question grounded on the indexed corpus.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	history := make([]domain.Turn, len(req.ConversationHistory))
	for i, turn := range req.ConversationHistory {
		history[i] = domain.Turn{Role: turn.Role, Content: turn.Content}
	}

	answer, err := h.svc.Ask(r.Context(), service.AskInput{
		Question:       req.Question,
		History:        history,
		SessionID:      req.SessionID,
		IsFirstMessage: req.IsFirstMessage,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}
