package models

// QuizItem is a multiple-choice question. The generator is asked for four
// distinct options with CorrectAnswer equal to one of them; nothing here
// enforces that.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// GenerateFromNotesRequest is the body of both generate-quiz and generate-flashcards.
type GenerateFromNotesRequest struct {
	Notes     string `json:"notes"`
	SessionID string `json:"session_id"`
}
