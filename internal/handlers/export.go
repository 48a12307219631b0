package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
)

type ExportHandler struct {
	exports *services.ExportService
	now     func() time.Time
}

func NewExportHandler(exports *services.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports, now: time.Now}
}

// Export downloads the session archive as a text attachment.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSession(r.Context())
	writeAttachment(w, h.exports.Export(r.Context(), store, h.now()))
}

// Get downloads a previously stored export of the current session.
func (h *ExportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid export ID", r))
		return
	}

	store := middleware.GetSession(r.Context())
	export, err := h.exports.Get(r.Context(), id, store.ID())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeAttachment(w, export)
}

func writeAttachment(w http.ResponseWriter, export *models.ArchiveExport) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("X-Export-ID", export.ID.String())
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.Body))
}
