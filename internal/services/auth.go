package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/session"
)

type tokenIssuer interface {
	GenerateToken(sessionID uuid.UUID) (string, time.Time, error)
}

// SessionService opens and closes chat sessions. When a passphrase hash is
// configured, opening a session requires the matching passphrase.
type SessionService struct {
	manager        *session.Manager
	tokens         tokenIssuer
	passphraseHash []byte
}

func NewSessionService(manager *session.Manager, tokens tokenIssuer, passphraseHash string) *SessionService {
	s := &SessionService{
		manager: manager,
		tokens:  tokens,
	}
	if passphraseHash != "" {
		s.passphraseHash = []byte(passphraseHash)
	}
	return s
}

func (s *SessionService) Create(ctx context.Context, req models.CreateSessionRequest) (*models.CreateSessionResponse, error) {
	if s.passphraseHash != nil {
		if req.Passphrase == "" {
			return nil, &ValidationError{Fields: map[string]string{"passphrase": "Passphrase is required"}}
		}
		if err := bcrypt.CompareHashAndPassword(s.passphraseHash, []byte(req.Passphrase)); err != nil {
			return nil, &UnauthorizedError{Message: "Invalid passphrase"}
		}
	}

	store := s.manager.Create()

	token, expiresAt, err := s.tokens.GenerateToken(store.ID())
	if err != nil {
		s.manager.Destroy(store.ID())
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &models.CreateSessionResponse{
		SessionID: store.ID(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Destroy tears a session down. Its transcript and archive are gone afterwards.
func (s *SessionService) Destroy(ctx context.Context, sessionID uuid.UUID) error {
	if !s.manager.Destroy(sessionID) {
		return &NotFoundError{Message: "Session not found"}
	}
	return nil
}

// RandomSecret returns a hex-encoded random value of n bytes.
func RandomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
