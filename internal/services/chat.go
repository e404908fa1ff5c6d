package services

import (
	"context"
	"fmt"
	"strings"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

const maxChatHistory = 10

type ChatService struct {
	gen TextGenerator
	log *logger.Logger
}

func NewChatService(gen TextGenerator, log *logger.Logger) *ChatService {
	return &ChatService{gen: gen, log: log}
}

// Answer replies to a question using only the supplied notes. Missing notes
// are allowed; the model is told there is nothing to draw on.
func (s *ChatService) Answer(ctx context.Context, req models.ChatRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", &ValidationError{Message: "Missing 'message'", Fields: map[string]string{"message": "Message is required"}}
	}
	if strings.TrimSpace(req.Context) == "" {
		s.log.Warn("Chat request without notes context")
	}
	return generateText(ctx, s.gen, s.log, buildChatPrompt(req)), nil
}

func buildChatPrompt(req models.ChatRequest) string {
	notes := strings.TrimSpace(req.Context)
	if notes == "" {
		notes = "No study notes were provided for context."
	}

	var b strings.Builder
	b.WriteString("You are a friendly study tutor. Answer the student's question using ONLY the study notes below.\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. If the notes contain the answer, explain it clearly and concisely, quoting the notes where useful.\n")
	b.WriteString("2. If they do not, say that the information is not in the current notes. Never invent facts or use outside knowledge. ")
	b.WriteString("Suggest a related question or generating content on a related topic instead.\n")
	b.WriteString("3. Stay on the question and keep an encouraging tone.\n\n")
	b.WriteString("---STUDY NOTES---\n")
	b.WriteString(notes)
	b.WriteString("\n---END NOTES---\n\n")

	history := req.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			role := "Student"
			if msg.Role == "assistant" {
				role = "Tutor"
			}
			b.WriteString(fmt.Sprintf("%s: %s\n", role, strings.TrimSpace(msg.Content)))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Student question: %q\n", req.Message))
	return b.String()
}
