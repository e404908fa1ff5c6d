package handlers

import (
	"context"
	"net/http"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

type chatService interface {
	Answer(ctx context.Context, req models.ChatRequest) (string, error)
}

type ChatHandler struct {
	chatService chatService
	log         *logger.Logger
}

func NewChatHandler(chatService chatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.chatService.Answer(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}
