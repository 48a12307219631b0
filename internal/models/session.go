package models

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Passphrase string `json:"passphrase"`
}

type CreateSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionStats struct {
	SessionID        uuid.UUID `json:"session_id"`
	TranscriptLength int       `json:"transcript_length"`
	ArchiveSize      int       `json:"archive_size"`
	CreatedAt        time.Time `json:"created_at"`
	LastActiveAt     time.Time `json:"last_active_at"`
}

type NewConversationResponse struct {
	Archived    bool `json:"archived"`
	ArchiveSize int  `json:"archive_size"`
}
