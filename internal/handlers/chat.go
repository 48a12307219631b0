package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
)

const archivePreviewLen = 60

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transcript": store.Transcript(),
	})
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	store := middleware.GetSession(r.Context())

	// Completion failures come back as an assistant message, not an error.
	reply, err := h.chat.Submit(r.Context(), store, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Reply:      reply,
		Transcript: store.Transcript(),
	})
}

func (h *ChatHandler) NewConversation(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSession(r.Context())
	resp, err := h.chat.StartNewConversation(r.Context(), store)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSession(r.Context())
	if err := h.chat.ClearAll(r.Context(), store); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All chats cleared"})
}

func (h *ChatHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	store := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chats": store.ArchiveEntries(archivePreviewLen),
	})
}

func (h *ChatHandler) GetArchived(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat index", r))
		return
	}

	store := middleware.GetSession(r.Context())
	transcript, ok := store.ArchivedChat(index)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Chat not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"index":      index,
		"transcript": transcript,
	})
}
