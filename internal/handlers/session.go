package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/models"
)

type sessionService interface {
	Create(ctx context.Context, req models.CreateSessionRequest) (*models.CreateSessionResponse, error)
	Destroy(ctx context.Context, sessionID uuid.UUID) error
}

type SessionHandler struct {
	sessions sessionService
}

func NewSessionHandler(sessions sessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.sessions.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, store.Stats())
}

func (h *SessionHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSession(r.Context())

	if err := h.sessions.Destroy(r.Context(), store.ID()); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended"})
}
