package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

func createPlan(t *testing.T, h *PlanHandler, userID uuid.UUID, topic, date string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Create(rr, asUser(jsonRequest(t, http.MethodPost, "/api/study-plan", models.CreatePlanEntryRequest{Topic: topic, ReviewDate: date}), userID))
	return rr
}

func TestPlanHandler_CreateAndList(t *testing.T) {
	h := NewPlanHandler(&memoryPlans{}, logger.Nop())
	userID := uuid.New()

	rr := createPlan(t, h, userID, "Mitosis", "2026-11-02")
	expectStatus(t, rr, http.StatusCreated)
	var created models.PlanEntryResponse
	json.NewDecoder(rr.Body).Decode(&created)
	if created.ReviewDate != "2026-11-02" || created.Topic != "Mitosis" {
		t.Fatalf("unexpected entry %+v", created)
	}

	expectStatus(t, createPlan(t, h, userID, "Photosynthesis", "2026-10-20"), http.StatusCreated)
	expectStatus(t, createPlan(t, h, uuid.New(), "Someone else", "2026-10-01"), http.StatusCreated)

	rr = httptest.NewRecorder()
	h.List(rr, asUser(jsonRequest(t, http.MethodGet, "/api/study-plan", nil), userID))
	expectStatus(t, rr, http.StatusOK)

	var entries []models.PlanEntryResponse
	json.NewDecoder(rr.Body).Decode(&entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Topic != "Photosynthesis" || entries[1].Topic != "Mitosis" {
		t.Fatalf("expected entries ordered by review date, got %+v", entries)
	}
}

func TestPlanHandler_CreateValidation(t *testing.T) {
	h := NewPlanHandler(&memoryPlans{}, logger.Nop())
	tests := []struct {
		name, topic, date, field string
	}{
		{"missing topic", "", "2026-10-20", "topic"},
		{"missing date", "Mitosis", "", "review_date"},
		{"bad date", "Mitosis", "20/10/2026", "review_date"},
		{"impossible date", "Mitosis", "2026-02-30", "review_date"},
		{"topic too long", strings.Repeat("t", 201), "2026-10-20", "topic"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := createPlan(t, h, uuid.New(), tc.topic, tc.date)
			expectStatus(t, rr, http.StatusBadRequest)
			if resp := decodeError(t, rr); resp.Error.Fields[tc.field] == "" {
				t.Fatalf("expected field error for %s, got %+v", tc.field, resp.Error.Fields)
			}
		})
	}
}

func TestPlanHandler_LongestTopic(t *testing.T) {
	h := NewPlanHandler(&memoryPlans{}, logger.Nop())
	rr := createPlan(t, h, uuid.New(), strings.Repeat("é", 200), "2026-10-20")
	expectStatus(t, rr, http.StatusCreated)
}

func TestPlanHandler_CreateStoreFailure(t *testing.T) {
	h := NewPlanHandler(&memoryPlans{err: errors.New("db down")}, logger.Nop())
	rr := createPlan(t, h, uuid.New(), "Mitosis", "2026-10-20")
	expectStatus(t, rr, http.StatusInternalServerError)
}

func TestPlanHandler_DeleteTwice(t *testing.T) {
	h := NewPlanHandler(&memoryPlans{}, logger.Nop())
	userID := uuid.New()

	var created models.PlanEntryResponse
	json.NewDecoder(createPlan(t, h, userID, "Mitosis", "2026-10-20").Body).Decode(&created)
	id := created.ID.String()

	rr := httptest.NewRecorder()
	h.Delete(rr, withURLParam(asUser(jsonRequest(t, http.MethodDelete, "/", nil), userID), "id", id))
	expectStatus(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	h.Delete(rr, withURLParam(asUser(jsonRequest(t, http.MethodDelete, "/", nil), userID), "id", id))
	expectStatus(t, rr, http.StatusNotFound)

	rr = httptest.NewRecorder()
	h.Delete(rr, withURLParam(asUser(jsonRequest(t, http.MethodDelete, "/", nil), userID), "id", "not-a-uuid"))
	expectStatus(t, rr, http.StatusNotFound)
}
