package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

type sessionRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SessionListItem, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.StudySession, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type SessionHandler struct {
	sessionRepo sessionRepository
	log         *logger.Logger
}

func NewSessionHandler(sessionRepo sessionRepository, log *logger.Logger) *SessionHandler {
	return &SessionHandler{sessionRepo: sessionRepo, log: log}
}

type sessionDetail struct {
	ID         uuid.UUID          `json:"id"`
	Topic      string             `json:"topic"`
	Notes      *string            `json:"notes"`
	Summary    *string            `json:"summary"`
	Videos     []models.VideoRef  `json:"videos"`
	Quiz       []models.QuizItem  `json:"quizQuestions"`
	Flashcards []models.Flashcard `json:"flashcards"`
	CreatedAt  time.Time          `json:"created_at"`
}

func newSessionDetail(s *models.StudySession) sessionDetail {
	d := sessionDetail{
		ID:         s.ID,
		Topic:      s.Topic,
		Notes:      s.Notes,
		Summary:    s.Summary,
		Videos:     s.Videos,
		Quiz:       s.Quiz,
		Flashcards: s.Flashcards,
		CreatedAt:  s.CreatedAt,
	}
	if d.Videos == nil {
		d.Videos = []models.VideoRef{}
	}
	if d.Quiz == nil {
		d.Quiz = []models.QuizItem{}
	}
	if d.Flashcards == nil {
		d.Flashcards = []models.Flashcard{}
	}
	return d
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sessions, err := h.sessionRepo.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// sessionID parses the {id} path value. Malformed ids are reported as not
// found, the same as ids that belong to someone else.
func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return uuid.Nil, false
	}
	return id, true
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.sessionRepo.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionDetail(session))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sessionRepo.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
		handleServiceError(w, r, h.log, err)
		return
	}

	h.log.Info("Session deleted", "user_id", userID, "session_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}
