package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
)

// memoryStore keeps sessions and plan entries in memory. It satisfies both
// the handlers' repositories and the content service's session store.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.StudySession
	creates  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[uuid.UUID]*models.StudySession{}}
}

func (m *memoryStore) Create(ctx context.Context, s *models.StudySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	copied := *s
	m.sessions[s.ID] = &copied
	m.creates++
	return nil
}

func (m *memoryStore) seed(userID uuid.UUID, topic string) uuid.UUID {
	s := &models.StudySession{UserID: userID, Topic: topic}
	m.Create(context.Background(), s)
	return s.ID
}

func (m *memoryStore) owned(userID, id uuid.UUID) (*models.StudySession, error) {
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *memoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SessionListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SessionListItem{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, models.SessionListItem{ID: s.ID, Topic: s.Topic, CreatedAt: s.CreatedAt})
		}
	}
	return out, nil
}

func (m *memoryStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.owned(userID, id)
	if err != nil {
		return nil, err
	}
	copied := *s
	return &copied, nil
}

func (m *memoryStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.owned(userID, id); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) UpdateQuiz(ctx context.Context, userID, id uuid.UUID, quiz []models.QuizItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.owned(userID, id)
	if err != nil {
		return err
	}
	s.Quiz = quiz
	return nil
}

func (m *memoryStore) UpdateFlashcards(ctx context.Context, userID, id uuid.UUID, cards []models.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.owned(userID, id)
	if err != nil {
		return err
	}
	s.Flashcards = cards
	return nil
}

// memoryPlans implements planRepository.
type memoryPlans struct {
	mu      sync.Mutex
	entries []*models.PlanEntry
	err     error
}

func (p *memoryPlans) Create(ctx context.Context, e *models.PlanEntry) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	copied := *e
	p.entries = append(p.entries, &copied)
	return nil
}

func (p *memoryPlans) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PlanEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*models.PlanEntry
	for _, e := range p.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewDate.Before(out[j].ReviewDate) })
	return out, nil
}

func (p *memoryPlans) Delete(ctx context.Context, userID, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.entries {
		if e.ID == id && e.UserID == userID {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type promptGenerator struct {
	reply func(prompt string) (string, error)
}

func (g *promptGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.reply(prompt)
}

type fixedVideos []models.VideoRef

func (v fixedVideos) Search(ctx context.Context, topic string) []models.VideoRef {
	return v
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.RequestIDHeader, "req-test")
	return req
}

func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}
