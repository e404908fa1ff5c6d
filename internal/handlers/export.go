package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gosimple/slug"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type ExportHandler struct {
	export *services.ExportService
	log    *logger.Logger
}

func NewExportHandler(export *services.ExportService, log *logger.Logger) *ExportHandler {
	return &ExportHandler{export: export, log: log}
}

type generatePDFRequest struct {
	Notes string            `json:"notes"`
	Quiz  []models.QuizItem `json:"quizQuestions"`
	Topic string            `json:"topic"`
}

type downloadFlashcardsRequest struct {
	Flashcards json.RawMessage `json:"flashcards"`
	Topic      string          `json:"topic"`
}

// downloadName builds "<slug>_<suffix>", falling back when the topic has no
// usable characters.
func downloadName(topic, fallback, suffix string) string {
	name := slug.Make(topic)
	if name == "" {
		name = slug.Make(fallback)
	}
	return name + "_" + suffix
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *ExportHandler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req generatePDFRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Notes) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Missing 'notes' text to generate PDF",
			map[string]string{"notes": "Notes are required"}, r))
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = "Study Notes"
	}

	doc, err := h.export.RenderDocument(topic, req.Notes, req.Quiz)
	if err != nil {
		h.log.Error("PDF generation failed", "topic", topic, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("RENDER_ERROR", "Failed to generate PDF", r))
		return
	}

	attachment(w, "application/pdf", downloadName(topic, "study notes", "study_notes.pdf"), doc)
}

func (h *ExportHandler) DownloadFlashcards(w http.ResponseWriter, r *http.Request) {
	var req downloadFlashcardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var cards []models.Flashcard
	raw := bytes.TrimSpace(req.Flashcards)
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &cards) != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid or missing 'flashcards' list in request body",
			map[string]string{"flashcards": "Must be a list of {term, definition} objects"}, r))
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = "flashcards"
	}
	attachment(w, "text/csv; charset=utf-8", downloadName(topic, "flashcards", "flashcards.csv"), h.export.RenderFlashcardTable(cards))
}
