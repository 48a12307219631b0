package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchiveExport is a rendered archive ready for download.
type ArchiveExport struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Filename  string    `json:"filename"`
	Body      string    `json:"-"`
	ChatCount int       `json:"chat_count"`
	CreatedAt time.Time `json:"created_at"`
}
