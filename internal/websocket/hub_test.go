package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/session"
)

type stubTokens struct {
	sessionID uuid.UUID
}

func (s stubTokens) ParseToken(tokenStr string) (uuid.UUID, error) {
	if tokenStr != "good" {
		return uuid.Nil, errors.New("invalid token")
	}
	return s.sessionID, nil
}

type stubSessions map[uuid.UUID]*session.Store

func (s stubSessions) Get(id uuid.UUID) (*session.Store, bool) {
	store, ok := s[id]
	return store, ok
}

func TestHub_RejectsMissingOrBadToken(t *testing.T) {
	sessionID := uuid.New()
	hub := NewHub(nil, stubTokens{sessionID: sessionID}, stubSessions{sessionID: session.NewStore()})

	for _, target := range []string{"/ws", "/ws?token=bad"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		hub.HandleWebSocket(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rr.Code)
		}
	}
}

func TestHub_RejectsEndedSession(t *testing.T) {
	manager := session.NewManager(0)
	store := manager.Create()
	hub := NewHub(nil, stubTokens{sessionID: store.ID()}, manager)

	manager.Destroy(store.ID())

	req := httptest.NewRequest(http.MethodGet, "/ws?token=good", nil)
	rr := httptest.NewRecorder()
	hub.HandleWebSocket(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an ended session, got %d", rr.Code)
	}
	if hub.ConnectionCount(store.ID()) != 0 {
		t.Fatalf("no connection may be registered for an ended session")
	}
}

func TestHub_PublishDeliversInProcess(t *testing.T) {
	sessionID := uuid.New()
	hub := NewHub(nil, stubTokens{sessionID: sessionID}, stubSessions{sessionID: session.NewStore()})

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=good"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount(sessionID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("connection was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish(context.Background(), sessionID, models.WSMessage{
		Type: models.EventTurn,
		Payload: models.TurnEvent{
			SessionID: sessionID,
			Position:  1,
			Message:   models.ChatMessage{Role: models.RoleUser, Content: "Hi"},
		},
	})
	// Events for other sessions must not arrive here.
	hub.Publish(context.Background(), uuid.New(), models.WSMessage{Type: models.EventCleared})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var got struct {
		Type    string           `json:"type"`
		Payload models.TurnEvent `json:"payload"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if got.Type != models.EventTurn || got.Payload.Message.Content != "Hi" {
		t.Fatalf("unexpected event: %s", data)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.ConnectionCount(sessionID) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("connection was never unregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
