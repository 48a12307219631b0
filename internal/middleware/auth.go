package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gemchat-backend/internal/session"
)

type contextKey string

const SessionKey contextKey = "session"

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type sessionLookup interface {
	Get(id uuid.UUID) (*session.Store, bool)
}

// SessionAuth issues and verifies the signed token that identifies a chat
// session. The token only carries the session ID; state stays in the Manager.
type SessionAuth struct {
	Secret   []byte
	TTL      time.Duration
	sessions sessionLookup
}

func NewSessionAuth(secret string, ttl time.Duration, sessions sessionLookup) *SessionAuth {
	return &SessionAuth{
		Secret:   []byte(secret),
		TTL:      ttl,
		sessions: sessions,
	}
}

// GenerateToken creates a JWT for sessionID that expires after TTL
func (a *SessionAuth) GenerateToken(sessionID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.TTL)
	claims := jwt.MapClaims{
		"session_id": sessionID.String(),
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies tokenStr and returns the session ID it carries.
func (a *SessionAuth) ParseToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrTokenInvalid
	}

	idStr, ok := claims["session_id"].(string)
	if !ok {
		return uuid.Nil, ErrTokenInvalid
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}

// Middleware validates the session token and attaches the session to context
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", r)
			return
		}

		// Must be Bearer format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format", r)
			return
		}

		sessionID, err := a.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token", r)
			}
			return
		}

		store, ok := a.sessions.Get(sessionID)
		if !ok {
			writeError(w, http.StatusUnauthorized, "SESSION_ENDED", "Session has ended", r)
			return
		}
		store.Touch()

		ctx := context.WithValue(r.Context(), SessionKey, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession extracts the session store from request context
func GetSession(ctx context.Context) *session.Store {
	s, _ := ctx.Value(SessionKey).(*session.Store)
	return s
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}
