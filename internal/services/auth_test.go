package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/session"
)

type stubTokenIssuer struct {
	err    error
	issued []uuid.UUID
}

func (s *stubTokenIssuer) GenerateToken(sessionID uuid.UUID) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	s.issued = append(s.issued, sessionID)
	return "token-" + sessionID.String(), time.Now().Add(time.Hour), nil
}

func TestSessionService_CreateWithoutPassphrase(t *testing.T) {
	manager := session.NewManager(time.Hour)
	tokens := &stubTokenIssuer{}
	svc := NewSessionService(manager, tokens, "")

	resp, err := svc.Create(context.Background(), models.CreateSessionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "token-"+resp.SessionID.String() {
		t.Fatalf("unexpected token %q", resp.Token)
	}

	store, ok := manager.Get(resp.SessionID)
	if !ok {
		t.Fatalf("expected session to be registered")
	}
	if len(store.Transcript()) != 0 || store.ArchiveSize() != 0 {
		t.Fatalf("new session must start empty")
	}
}

func TestSessionService_PassphraseGate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash passphrase: %v", err)
	}

	manager := session.NewManager(time.Hour)
	svc := NewSessionService(manager, &stubTokenIssuer{}, string(hash))

	_, err = svc.Create(context.Background(), models.CreateSessionRequest{})
	var validation *ValidationError
	if !errors.As(err, &validation) || validation.Fields["passphrase"] == "" {
		t.Fatalf("expected validation error for missing passphrase, got %v", err)
	}

	_, err = svc.Create(context.Background(), models.CreateSessionRequest{Passphrase: "wrong"})
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if manager.Len() != 0 {
		t.Fatalf("rejected requests must not create sessions")
	}

	if _, err := svc.Create(context.Background(), models.CreateSessionRequest{Passphrase: "open sesame"}); err != nil {
		t.Fatalf("expected correct passphrase to succeed, got %v", err)
	}
}

func TestSessionService_TokenFailureRollsBack(t *testing.T) {
	manager := session.NewManager(time.Hour)
	svc := NewSessionService(manager, &stubTokenIssuer{err: errors.New("boom")}, "")

	if _, err := svc.Create(context.Background(), models.CreateSessionRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if manager.Len() != 0 {
		t.Fatalf("session must be destroyed when no token could be issued")
	}
}

func TestSessionService_Destroy(t *testing.T) {
	manager := session.NewManager(time.Hour)
	svc := NewSessionService(manager, &stubTokenIssuer{}, "")
	store := manager.Create()

	if err := svc.Destroy(context.Background(), store.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.Destroy(context.Background(), store.ID())
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := RandomSecret(32)
	if len(a) != 64 || a == b {
		t.Fatalf("expected distinct 64-char secrets, got %q and %q", a, b)
	}
}
