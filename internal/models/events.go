package models

import "github.com/google/uuid"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Topic     string     `json:"topic,omitempty"`
	Step      int        `json:"step"`
	StepName  string     `json:"step_name"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error              APIError `json:"error"`
	RawResponseSnippet string   `json:"raw_response_snippet,omitempty"`
}
