package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

type stubGenerator struct {
	mu      sync.Mutex
	reply   func(prompt string) (string, error)
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.reply(prompt)
}

func fixedReply(text string) *stubGenerator {
	return &stubGenerator{reply: func(string) (string, error) { return text, nil }}
}

type stubVideos struct {
	videos []models.VideoRef
	topic  string
}

func (v *stubVideos) Search(ctx context.Context, topic string) []models.VideoRef {
	v.topic = topic
	return v.videos
}

type memorySessions struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*models.StudySession
	createErr error
	updateErr error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[uuid.UUID]*models.StudySession{}}
}

func (m *memorySessions) Create(ctx context.Context, s *models.StudySession) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memorySessions) owned(userID, id uuid.UUID) (*models.StudySession, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *memorySessions) UpdateQuiz(ctx context.Context, userID, id uuid.UUID, quiz []models.QuizItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.owned(userID, id)
	if err != nil {
		return err
	}
	s.Quiz = quiz
	return nil
}

func (m *memorySessions) UpdateFlashcards(ctx context.Context, userID, id uuid.UUID, cards []models.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.owned(userID, id)
	if err != nil {
		return err
	}
	s.Flashcards = cards
	return nil
}

type recordingProgress struct {
	mu    sync.Mutex
	steps []string
}

func (p *recordingProgress) Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, msg.Payload.(models.StatusUpdate).StepName)
}

func seedSession(store *memorySessions, userID uuid.UUID) uuid.UUID {
	notes := "Chlorophyll absorbs light."
	s := &models.StudySession{UserID: userID, Topic: "Photosynthesis", Notes: &notes}
	store.Create(context.Background(), s)
	return s.ID
}

func TestGenerateContent_CreatesOneSession(t *testing.T) {
	gen := &stubGenerator{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "study notes") {
			return "## Photosynthesis\nNotes body", nil
		}
		return "Short summary", nil
	}}
	videos := &stubVideos{videos: []models.VideoRef{
		{Title: "V1", URL: "https://www.youtube.com/watch?v=1", ID: "1"},
		{Title: "V2", URL: "https://www.youtube.com/watch?v=2", ID: "2"},
	}}
	store := newMemorySessions()
	progress := &recordingProgress{}
	svc := NewContentService(gen, videos, store, progress, logger.Nop())
	userID := uuid.New()

	resp, err := svc.GenerateContent(context.Background(), userID, "  Photosynthesis ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.sessions) != 1 {
		t.Fatalf("expected exactly one session, got %d", len(store.sessions))
	}
	saved := store.sessions[resp.SessionID]
	if saved == nil {
		t.Fatalf("response session id %s was not stored", resp.SessionID)
	}
	if saved.UserID != userID || saved.Topic != "Photosynthesis" {
		t.Fatalf("unexpected stored session %+v", saved)
	}
	if *saved.Notes != "## Photosynthesis\nNotes body" || *saved.Summary != "Short summary" {
		t.Fatalf("unexpected notes/summary %q / %q", *saved.Notes, *saved.Summary)
	}
	if len(saved.Videos) != 2 || len(resp.Videos) != 2 || videos.topic != "Photosynthesis" {
		t.Fatalf("expected two videos for the trimmed topic, got %+v", resp.Videos)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("expected two generation calls, got %d", len(gen.prompts))
	}
	if got := strings.Join(progress.steps, "|"); got != "Generating notes and summary|Saving session|Complete" {
		t.Fatalf("unexpected progress steps %q", got)
	}
}

func TestGenerateContent_GenerationErrorsBecomeText(t *testing.T) {
	gen := &stubGenerator{reply: func(string) (string, error) { return "", errors.New("deadline exceeded") }}
	store := newMemorySessions()
	svc := NewContentService(gen, &stubVideos{}, store, nil, logger.Nop())

	resp, err := svc.GenerateContent(context.Background(), uuid.New(), "Mitosis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Notes != "Error generating content: deadline exceeded" {
		t.Fatalf("unexpected notes %q", resp.Notes)
	}
	if resp.Videos == nil {
		t.Fatal("videos should be an empty list, not nil")
	}
	if len(store.sessions) != 1 {
		t.Fatal("session should still be stored")
	}
}

func TestGenerateContent_Validation(t *testing.T) {
	svc := NewContentService(fixedReply("x"), &stubVideos{}, newMemorySessions(), nil, logger.Nop())
	_, err := svc.GenerateContent(context.Background(), uuid.New(), "   ")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGenerateContent_TopicLength(t *testing.T) {
	gen := fixedReply("x")
	store := newMemorySessions()
	svc := NewContentService(gen, &stubVideos{}, store, nil, logger.Nop())

	_, err := svc.GenerateContent(context.Background(), uuid.New(), strings.Repeat("t", 201))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["topic"] == "" {
		t.Fatalf("expected topic ValidationError, got %v", err)
	}
	if len(gen.prompts) != 0 || len(store.sessions) != 0 {
		t.Fatal("an over-long topic must not reach the generator or the store")
	}

	if _, err := svc.GenerateContent(context.Background(), uuid.New(), strings.Repeat("t", 200)); err != nil {
		t.Fatalf("200-character topic should be accepted: %v", err)
	}
}

func TestGenerateContent_StoreFailure(t *testing.T) {
	store := newMemorySessions()
	store.createErr = errors.New("connection refused")
	svc := NewContentService(fixedReply("x"), &stubVideos{}, store, nil, logger.Nop())

	_, err := svc.GenerateContent(context.Background(), uuid.New(), "Mitosis")
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestGenerateQuiz_PersistsItems(t *testing.T) {
	store := newMemorySessions()
	userID := uuid.New()
	sessionID := seedSession(store, userID)
	svc := NewContentService(fixedReply("Here is your quiz:\n```json\n"+fiveQuestions+"\n```"), &stubVideos{}, store, nil, logger.Nop())

	quiz, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateFromNotesRequest{
		Notes: "Chlorophyll absorbs light.", SessionID: sessionID.String(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(quiz))
	}
	stored := store.sessions[sessionID].Quiz
	if len(stored) != 5 || stored[2].Question != "Q3" {
		t.Fatalf("stored quiz does not match: %+v", stored)
	}
}

func TestGenerateQuiz_ParseFailureLeavesSessionUnchanged(t *testing.T) {
	store := newMemorySessions()
	userID := uuid.New()
	sessionID := seedSession(store, userID)
	svc := NewContentService(fixedReply("Sorry, I can only answer in prose."), &stubVideos{}, store, nil, logger.Nop())

	_, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateFromNotesRequest{
		Notes: "notes", SessionID: sessionID.String(),
	})
	var perr *GenerationParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected GenerationParseError, got %v", err)
	}
	if store.sessions[sessionID].Quiz != nil {
		t.Fatal("session quiz must stay unset")
	}

	_, err = svc.GenerateFlashcards(context.Background(), userID, models.GenerateFromNotesRequest{
		Notes: "notes", SessionID: sessionID.String(),
	})
	if !errors.As(err, &perr) {
		t.Fatalf("expected GenerationParseError for flashcards, got %v", err)
	}
	if store.sessions[sessionID].Flashcards != nil {
		t.Fatal("session flashcards must stay unset")
	}
}

func TestGenerateQuiz_EmptyRejectedFlashcardsEmptyAccepted(t *testing.T) {
	store := newMemorySessions()
	userID := uuid.New()
	sessionID := seedSession(store, userID)
	svc := NewContentService(fixedReply("[]"), &stubVideos{}, store, nil, logger.Nop())
	req := models.GenerateFromNotesRequest{Notes: "notes", SessionID: sessionID.String()}

	var perr *GenerationParseError
	if _, err := svc.GenerateQuiz(context.Background(), userID, req); !errors.As(err, &perr) {
		t.Fatalf("expected empty quiz to be rejected, got %v", err)
	}

	cards, err := svc.GenerateFlashcards(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("expected empty flashcards to be accepted, got %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected no cards, got %d", len(cards))
	}
	if stored := store.sessions[sessionID].Flashcards; stored == nil || len(stored) != 0 {
		t.Fatalf("expected stored empty list, got %#v", stored)
	}
}

func TestGenerateFlashcards_MissingSessionIsNotFatal(t *testing.T) {
	store := newMemorySessions()
	owner := uuid.New()
	sessionID := seedSession(store, owner)
	svc := NewContentService(fixedReply(`[{"term":"ATP","definition":"energy currency"}]`), &stubVideos{}, store, nil, logger.Nop())

	cards, err := svc.GenerateFlashcards(context.Background(), uuid.New(), models.GenerateFromNotesRequest{
		Notes: "notes", SessionID: sessionID.String(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 1 || cards[0].Term != "ATP" {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if store.sessions[sessionID].Flashcards != nil {
		t.Fatal("another user's session must not be updated")
	}
}

func TestGenerateQuiz_StoreFailureIsPersistenceError(t *testing.T) {
	store := newMemorySessions()
	userID := uuid.New()
	sessionID := seedSession(store, userID)
	store.updateErr = errors.New("connection reset")
	svc := NewContentService(fixedReply(fiveQuestions), &stubVideos{}, store, nil, logger.Nop())

	_, err := svc.GenerateQuiz(context.Background(), userID, models.GenerateFromNotesRequest{
		Notes: "notes", SessionID: sessionID.String(),
	})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestGenerateQuiz_Validation(t *testing.T) {
	svc := NewContentService(fixedReply(fiveQuestions), &stubVideos{}, newMemorySessions(), nil, logger.Nop())

	tests := []struct {
		name  string
		req   models.GenerateFromNotesRequest
		field string
	}{
		{"missing notes", models.GenerateFromNotesRequest{SessionID: uuid.NewString()}, "notes"},
		{"missing session", models.GenerateFromNotesRequest{Notes: "n"}, "session_id"},
		{"bad session", models.GenerateFromNotesRequest{Notes: "n", SessionID: "42"}, "session_id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GenerateQuiz(context.Background(), uuid.New(), tc.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, verr.Fields)
			}
		})
	}
}
