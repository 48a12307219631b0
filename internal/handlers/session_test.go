package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
	"gemchat-backend/internal/session"
)

type stubSessionService struct {
	createErr  error
	lastReq    models.CreateSessionRequest
	destroyed  []uuid.UUID
	destroyErr error
}

func (s *stubSessionService) Create(ctx context.Context, req models.CreateSessionRequest) (*models.CreateSessionResponse, error) {
	s.lastReq = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.CreateSessionResponse{SessionID: uuid.New(), Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubSessionService) Destroy(ctx context.Context, sessionID uuid.UUID) error {
	s.destroyed = append(s.destroyed, sessionID)
	return s.destroyErr
}

func TestSessionHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"empty body", "", nil, http.StatusCreated, ""},
		{"with passphrase", `{"passphrase":"secret"}`, nil, http.StatusCreated, ""},
		{"bad json", `{"passphrase":`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrong passphrase", `{"passphrase":"nope"}`, &services.UnauthorizedError{Message: "Invalid passphrase"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing passphrase", `{}`, &services.ValidationError{Fields: map[string]string{"passphrase": "Passphrase is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubSessionService{createErr: tc.svcErr}
			h := NewSessionHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			h.Create(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantCode == "" {
				var resp models.CreateSessionResponse
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Token != "tok" {
					t.Fatalf("unexpected token %q", resp.Token)
				}
				return
			}

			var errResp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if errResp.Error.Code != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, errResp.Error.Code)
			}
		})
	}
}

func TestSessionHandler_GetAndDestroy(t *testing.T) {
	store := session.NewStore()
	store.RecordUserTurn("Hi")
	svc := &stubSessionService{}
	h := NewSessionHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/session", nil), store))

	var stats models.SessionStats
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.SessionID != store.ID() || stats.TranscriptLength != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rr = httptest.NewRecorder()
	h.Destroy(rr, withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil), store))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if len(svc.destroyed) != 1 || svc.destroyed[0] != store.ID() {
		t.Fatalf("expected session %s to be destroyed, got %v", store.ID(), svc.destroyed)
	}
}
