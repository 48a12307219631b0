package models

import "github.com/google/uuid"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventTurn         = "turn"
	EventStatusUpdate = "status_update"
	EventNewChat      = "new_conversation"
	EventCleared      = "cleared"
)

type TurnEvent struct {
	SessionID uuid.UUID   `json:"session_id"`
	Position  int         `json:"position"` // 1-based index in the live transcript
	Message   ChatMessage `json:"message"`
}

type StatusUpdate struct {
	SessionID uuid.UUID `json:"session_id"`
	StepName  string    `json:"step_name"`
	Pending   bool      `json:"pending"`
}

type ArchiveEvent struct {
	SessionID   uuid.UUID `json:"session_id"`
	ArchiveSize int       `json:"archive_size"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
