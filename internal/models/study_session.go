package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxTopicLength is the longest topic, in characters, a session or plan entry stores.
const MaxTopicLength = 200

// StudySession is one topic-generation episode and everything derived from it.
// Notes and Summary are written once at creation; Quiz and Flashcards are
// filled in later by separate generation calls.
type StudySession struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"user_id"`
	Topic      string      `json:"topic"`
	Notes      *string     `json:"notes"`
	Summary    *string     `json:"summary"`
	Videos     []VideoRef  `json:"videos"`
	Quiz       []QuizItem  `json:"quizQuestions"`
	Flashcards []Flashcard `json:"flashcards"`
	CreatedAt  time.Time   `json:"created_at"`
}

type SessionListItem struct {
	ID        uuid.UUID `json:"id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

type VideoRef struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
	ID        string `json:"id"`
}

type GetContentRequest struct {
	Topic string `json:"topic"`
}

type ContentResponse struct {
	SessionID uuid.UUID  `json:"session_id"`
	Topic     string     `json:"topic"`
	Notes     string     `json:"notes"`
	Summary   string     `json:"summary"`
	Videos    []VideoRef `json:"videos"`
}
