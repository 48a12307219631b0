package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/session"
)

type exportRepository interface {
	Create(ctx context.Context, e *models.ArchiveExport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ArchiveExport, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

// ExportService renders a session archive for download. When a repository
// is configured each export is also stored so it can be fetched again.
type ExportService struct {
	repo exportRepository
}

func NewExportService(repo exportRepository) *ExportService {
	return &ExportService{repo: repo}
}

// ExportFilename builds a collision-resistant download name.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("chat_logs_%s.txt", now.UTC().Format("20060102_150405"))
}

func (s *ExportService) Export(ctx context.Context, store *session.Store, now time.Time) *models.ArchiveExport {
	body, chatCount := store.ExportSnapshot()
	export := &models.ArchiveExport{
		ID:        uuid.New(),
		SessionID: store.ID(),
		Filename:  ExportFilename(now),
		Body:      body,
		ChatCount: chatCount,
		CreatedAt: now.UTC(),
	}

	if s.repo == nil {
		return export
	}

	if err := s.repo.Create(ctx, export); err != nil {
		// The download itself does not depend on the stored copy.
		log.Printf("WARNING: failed to store export %s: %v", export.ID, err)
	}
	return export
}

// Get returns a stored export owned by sessionID.
func (s *ExportService) Get(ctx context.Context, id, sessionID uuid.UUID) (*models.ArchiveExport, error) {
	if s.repo == nil {
		return nil, &NotFoundError{Message: "Export storage is not configured"}
	}

	export, err := s.repo.GetByID(ctx, id)
	if err != nil || export == nil {
		return nil, &NotFoundError{Message: "Export not found"}
	}
	if export.SessionID != sessionID {
		return nil, &ForbiddenError{Message: "Access denied"}
	}
	return export, nil
}

// Purge drops the stored exports of a session that has ended.
func (s *ExportService) Purge(ctx context.Context, sessionID uuid.UUID) {
	if s.repo == nil {
		return
	}

	n, err := s.repo.DeleteBySession(ctx, sessionID)
	if err != nil {
		log.Printf("WARNING: failed to purge exports for session %s: %v", sessionID, err)
		return
	}
	if n > 0 {
		log.Printf("Purged %d export(s) for ended session %s", n, sessionID)
	}
}
