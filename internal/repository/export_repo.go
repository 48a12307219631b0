package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gemchat-backend/internal/models"
)

type ExportRepo struct {
	pool *pgxpool.Pool
}

func NewExportRepo(pool *pgxpool.Pool) *ExportRepo {
	return &ExportRepo{pool: pool}
}

func (r *ExportRepo) Create(ctx context.Context, e *models.ArchiveExport) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `INSERT INTO archive_exports (id, session_id, filename, body, chat_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		e.ID, e.SessionID, e.Filename, e.Body, e.ChatCount,
	).Scan(&e.CreatedAt)
}

func (r *ExportRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ArchiveExport, error) {
	e := &models.ArchiveExport{}
	query := `SELECT id, session_id, filename, body, chat_count, created_at
		FROM archive_exports WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.SessionID, &e.Filename, &e.Body, &e.ChatCount, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteBySession removes every stored export of a session that has ended.
func (r *ExportRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM archive_exports WHERE session_id = $1", sessionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
