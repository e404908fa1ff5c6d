package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

type sessionStore interface {
	Create(ctx context.Context, s *models.StudySession) error
	UpdateQuiz(ctx context.Context, userID, id uuid.UUID, quiz []models.QuizItem) error
	UpdateFlashcards(ctx context.Context, userID, id uuid.UUID, cards []models.Flashcard) error
}

type ContentService struct {
	gen      TextGenerator
	videos   VideoSearcher
	sessions sessionStore
	progress ProgressPublisher
	log      *logger.Logger
}

func NewContentService(gen TextGenerator, videos VideoSearcher, sessions sessionStore, progress ProgressPublisher, log *logger.Logger) *ContentService {
	if progress == nil {
		progress = NopProgressPublisher{}
	}
	return &ContentService{
		gen:      gen,
		videos:   videos,
		sessions: sessions,
		progress: progress,
		log:      log,
	}
}

// generateText never fails: transport errors are folded into the returned
// text so they can be stored and shown like any other content.
func generateText(ctx context.Context, gen TextGenerator, log *logger.Logger, prompt string) string {
	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		log.Error("Text generation failed", "error", err)
		return fmt.Sprintf("Error generating content: %v", err)
	}
	return text
}

// GenerateContent writes notes and a summary for topic, looks up related
// videos and stores the result as a new session.
func (s *ContentService) GenerateContent(ctx context.Context, userID uuid.UUID, topic string) (*models.ContentResponse, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &ValidationError{Message: "Missing 'topic'", Fields: map[string]string{"topic": "Topic is required"}}
	}
	if utf8.RuneCountInString(topic) > models.MaxTopicLength {
		return nil, &ValidationError{Message: "Topic is too long",
			Fields: map[string]string{"topic": fmt.Sprintf("Topic must be at most %d characters", models.MaxTopicLength)}}
	}

	s.progress.Publish(ctx, userID, statusUpdate(nil, topic, 1, "Generating notes and summary"))

	var (
		notes, summary string
		videos         []models.VideoRef
		g              errgroup.Group
	)
	g.Go(func() error {
		notes = generateText(ctx, s.gen, s.log, buildNotesPrompt(topic))
		return nil
	})
	g.Go(func() error {
		summary = generateText(ctx, s.gen, s.log, buildSummaryPrompt(topic))
		return nil
	})
	g.Go(func() error {
		videos = s.videos.Search(ctx, topic)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []models.VideoRef{}
	}

	s.progress.Publish(ctx, userID, statusUpdate(nil, topic, 2, "Saving session"))

	session := &models.StudySession{
		UserID:  userID,
		Topic:   topic,
		Notes:   &notes,
		Summary: &summary,
		Videos:  videos,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, &PersistenceError{Op: "create session", Err: err}
	}

	s.progress.Publish(ctx, userID, statusUpdate(&session.ID, topic, 3, "Complete"))
	s.log.Info("Session created", "user_id", userID, "session_id", session.ID, "videos", len(videos))

	return &models.ContentResponse{
		SessionID: session.ID,
		Topic:     topic,
		Notes:     notes,
		Summary:   summary,
		Videos:    videos,
	}, nil
}

func validateNotesRequest(req models.GenerateFromNotesRequest) (uuid.UUID, error) {
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Notes) == "" {
		fieldErrors["notes"] = "Notes are required"
	}
	var sessionID uuid.UUID
	if strings.TrimSpace(req.SessionID) == "" {
		fieldErrors["session_id"] = "Session ID is required"
	} else {
		id, err := uuid.Parse(strings.TrimSpace(req.SessionID))
		if err != nil {
			fieldErrors["session_id"] = "Invalid session ID"
		}
		sessionID = id
	}
	if len(fieldErrors) > 0 {
		return uuid.Nil, &ValidationError{Message: "Missing 'notes' or 'session_id'", Fields: fieldErrors}
	}
	return sessionID, nil
}

// GenerateQuiz asks for five multiple-choice questions about the notes and
// stores them on the session. A session that cannot be found for the user
// is logged and skipped; the questions are still returned.
func (s *ContentService) GenerateQuiz(ctx context.Context, userID uuid.UUID, req models.GenerateFromNotesRequest) ([]models.QuizItem, error) {
	sessionID, err := validateNotesRequest(req)
	if err != nil {
		return nil, err
	}

	s.progress.Publish(ctx, userID, statusUpdate(&sessionID, "", 1, "Generating quiz"))

	raw := generateText(ctx, s.gen, s.log, buildQuizPrompt(req.Notes))
	quiz, err := parseGenerated[models.QuizItem](raw, "quiz", quizKeys, false)
	if err != nil {
		s.log.Error("Quiz response could not be parsed", "session_id", sessionID, "error", err, "raw_response", raw)
		return nil, err
	}

	if err := s.persist(ctx, "quiz", userID, sessionID, func() error {
		return s.sessions.UpdateQuiz(ctx, userID, sessionID, quiz)
	}); err != nil {
		return nil, err
	}

	s.progress.Publish(ctx, userID, statusUpdate(&sessionID, "", 2, "Quiz ready"))
	return quiz, nil
}

// GenerateFlashcards is GenerateQuiz for term/definition pairs. An empty
// list is a valid answer.
func (s *ContentService) GenerateFlashcards(ctx context.Context, userID uuid.UUID, req models.GenerateFromNotesRequest) ([]models.Flashcard, error) {
	sessionID, err := validateNotesRequest(req)
	if err != nil {
		return nil, err
	}

	s.progress.Publish(ctx, userID, statusUpdate(&sessionID, "", 1, "Generating flashcards"))

	raw := generateText(ctx, s.gen, s.log, buildFlashcardPrompt(req.Notes))
	cards, err := parseGenerated[models.Flashcard](raw, "flashcards", flashcardKeys, true)
	if err != nil {
		s.log.Error("Flashcard response could not be parsed", "session_id", sessionID, "error", err, "raw_response", raw)
		return nil, err
	}

	if err := s.persist(ctx, "flashcards", userID, sessionID, func() error {
		return s.sessions.UpdateFlashcards(ctx, userID, sessionID, cards)
	}); err != nil {
		return nil, err
	}

	s.progress.Publish(ctx, userID, statusUpdate(&sessionID, "", 2, "Flashcards ready"))
	return cards, nil
}

func (s *ContentService) persist(ctx context.Context, what string, userID, sessionID uuid.UUID, update func() error) error {
	err := update()
	switch {
	case err == nil:
		s.log.Info("Session updated", "session_id", sessionID, "field", what)
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		s.log.Warn("Session not found, generated content not saved", "user_id", userID, "session_id", sessionID, "field", what)
		return nil
	default:
		return &PersistenceError{Op: "save " + what, Err: err}
	}
}

func buildNotesPrompt(topic string) string {
	return fmt.Sprintf(`Write detailed study notes on the topic: "%s".
Organise them with Markdown headings, bullet points and short explanations.
The reader is a student meeting this topic for the first time, so be accurate and clear.`, topic)
}

func buildSummaryPrompt(topic string) string {
	return fmt.Sprintf(`Summarise the main points of the topic "%s" in 2 to 4 short paragraphs.
Call out the key concepts and definitions.`, topic)
}

func buildQuizPrompt(notes string) string {
	var b strings.Builder
	b.WriteString("Using ONLY the study notes below, write exactly 5 multiple-choice quiz questions for a student.\n")
	b.WriteString("Each question needs: the question text, a list of 4 distinct options, the correct answer ")
	b.WriteString("(copied exactly from the options) and a short explanation drawn from the notes.\n\n")
	b.WriteString(`Return ONLY a JSON array. Every element is an object with the keys "question", "options", "correct_answer" and "explanation".` + "\n")
	b.WriteString("CRITICAL: no preamble, no closing remarks, no code fences. The first character must be '[' and the last must be ']'.\n\n")
	b.WriteString("---NOTES---\n")
	b.WriteString(notes)
	b.WriteString("\n---END---\n")
	return b.String()
}

func buildFlashcardPrompt(notes string) string {
	var b strings.Builder
	b.WriteString("Pick out the key terms in the study notes below and write a flashcard for each, using ONLY the notes.\n")
	b.WriteString("Aim for 5 to 15 cards covering the most important ideas.\n\n")
	b.WriteString(`Return ONLY a JSON array. Every element is an object with the keys "term" (short) and "definition" (clear and concise).` + "\n")
	b.WriteString("CRITICAL: no preamble, no closing remarks, no code fences. The first character must be '[' and the last must be ']'.\n\n")
	b.WriteString("---NOTES---\n")
	b.WriteString(notes)
	b.WriteString("\n---END---\n")
	return b.String()
}
