package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
	"studymate-backend/internal/services"
)

type planRepository interface {
	Create(ctx context.Context, e *models.PlanEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PlanEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type PlanHandler struct {
	planRepo planRepository
	log      *logger.Logger
}

func NewPlanHandler(planRepo planRepository, log *logger.Logger) *PlanHandler {
	return &PlanHandler{planRepo: planRepo, log: log}
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.CreatePlanEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	topic := strings.TrimSpace(req.Topic)
	fieldErrors := make(map[string]string)
	switch {
	case topic == "":
		fieldErrors["topic"] = "Topic is required"
	case utf8.RuneCountInString(topic) > models.MaxTopicLength:
		fieldErrors["topic"] = fmt.Sprintf("Topic must be at most %d characters", models.MaxTopicLength)
	}
	var reviewDate time.Time
	if strings.TrimSpace(req.ReviewDate) == "" {
		fieldErrors["review_date"] = "Review date is required"
	} else {
		d, err := time.Parse(models.ReviewDateLayout, strings.TrimSpace(req.ReviewDate))
		if err != nil {
			fieldErrors["review_date"] = "Invalid date format. Use YYYY-MM-DD."
		}
		reviewDate = d
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Missing or invalid 'topic' or 'review_date'", fieldErrors, r))
		return
	}

	entry := &models.PlanEntry{UserID: userID, Topic: topic, ReviewDate: reviewDate}
	if err := h.planRepo.Create(r.Context(), entry); err != nil {
		handleServiceError(w, r, h.log, &services.PersistenceError{Op: "create plan entry", Err: err})
		return
	}

	h.log.Info("Plan entry added", "user_id", userID, "entry_id", entry.ID)
	writeJSON(w, http.StatusCreated, entry.Response())
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.planRepo.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := make([]models.PlanEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, e.Response())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Entry not found", r))
		return
	}

	if err := h.planRepo.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Entry not found", r))
			return
		}
		handleServiceError(w, r, h.log, &services.PersistenceError{Op: "delete plan entry", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted successfully"})
}
