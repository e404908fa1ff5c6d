package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

type contentService interface {
	GenerateContent(ctx context.Context, userID uuid.UUID, topic string) (*models.ContentResponse, error)
	GenerateQuiz(ctx context.Context, userID uuid.UUID, req models.GenerateFromNotesRequest) ([]models.QuizItem, error)
	GenerateFlashcards(ctx context.Context, userID uuid.UUID, req models.GenerateFromNotesRequest) ([]models.Flashcard, error)
}

type ContentHandler struct {
	contentService contentService
	log            *logger.Logger
}

func NewContentHandler(contentService contentService, log *logger.Logger) *ContentHandler {
	return &ContentHandler{contentService: contentService, log: log}
}

func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.GetContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.log.Info("Content requested", "user_id", userID, "topic", req.Topic)
	resp, err := h.contentService.GenerateContent(r.Context(), userID, req.Topic)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ContentHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.GenerateFromNotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quiz, err := h.contentService.GenerateQuiz(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *ContentHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.GenerateFromNotesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cards, err := h.contentService.GenerateFlashcards(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}
