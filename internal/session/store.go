// Package session holds the per-session chat state: the live transcript and
// the archive of closed conversations.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gemchat-backend/internal/models"
)

// Store owns one live transcript and one archive. A Store belongs to exactly
// one session and is torn down with it.
type Store struct {
	turnMu     sync.Mutex
	mu         sync.Mutex
	id         uuid.UUID
	transcript models.Transcript
	archive    []models.Transcript
	createdAt  time.Time
	lastActive time.Time
	now        func() time.Time
}

func NewStore() *Store {
	return newStore(uuid.New(), time.Now)
}

func newStore(id uuid.UUID, now func() time.Time) *Store {
	t := now()
	return &Store{
		id:         id,
		transcript: models.Transcript{},
		createdAt:  t,
		lastActive: t,
		now:        now,
	}
}

func (s *Store) ID() uuid.UUID {
	return s.id
}

// BeginTurn claims the session for one prompt/reply exchange and reports
// whether it succeeded. At most one turn is in flight per session; a
// successful BeginTurn must be paired with EndTurn.
func (s *Store) BeginTurn() bool {
	return s.turnMu.TryLock()
}

func (s *Store) EndTurn() {
	s.turnMu.Unlock()
}

// RecordUserTurn appends a user message to the live transcript. Empty input
// is filtered by callers, not here.
func (s *Store) RecordUserTurn(text string) int {
	return s.append(models.RoleUser, text)
}

// RecordAssistantTurn appends an assistant message. Replies and synthesized
// error messages are stored the same way.
func (s *Store) RecordAssistantTurn(text string) int {
	return s.append(models.RoleAssistant, text)
}

func (s *Store) append(role models.Role, text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = append(s.transcript, models.ChatMessage{Role: role, Content: text})
	s.lastActive = s.now()
	return len(s.transcript)
}

// StartNewConversation archives a copy of the live transcript and resets it.
// It is a no-op on an empty transcript and reports whether anything was archived.
func (s *Store) StartNewConversation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = s.now()
	if len(s.transcript) == 0 {
		return false
	}

	s.archive = append(s.archive, s.transcript.Clone())
	s.transcript = models.Transcript{}
	return true
}

// ClearAll drops the live transcript and every archived conversation.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = models.Transcript{}
	s.archive = nil
	s.lastActive = s.now()
}

func (s *Store) Transcript() models.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Clone()
}

func (s *Store) Archive() []models.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Transcript, len(s.archive))
	for i, t := range s.archive {
		out[i] = t.Clone()
	}
	return out
}

// ArchivedChat returns the archived conversation at the 1-based index.
func (s *Store) ArchivedChat(index int) (models.Transcript, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 1 || index > len(s.archive) {
		return nil, false
	}
	return s.archive[index-1].Clone(), true
}

func (s *Store) ArchiveSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.archive)
}

// ArchiveEntries lists the archive for display, previewing each chat by its
// first message.
func (s *Store) ArchiveEntries(previewLen int) []models.ArchiveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]models.ArchiveEntry, len(s.archive))
	for i, t := range s.archive {
		entries[i] = models.ArchiveEntry{
			Index:        i + 1,
			MessageCount: len(t),
			Preview:      truncate(t[0].Content, previewLen),
		}
	}
	return entries
}

func (s *Store) Stats() models.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionStats{
		SessionID:        s.id,
		TranscriptLength: len(s.transcript),
		ArchiveSize:      len(s.archive),
		CreatedAt:        s.createdAt,
		LastActiveAt:     s.lastActive,
	}
}

func (s *Store) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch marks the session as active without changing its contents.
func (s *Store) Touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// ExportArchiveAsText renders every archived conversation in order. An empty
// archive renders as "". Multi-line messages keep their text; continuation
// lines are indented by two spaces.
//
//	=== Chat #1 ===
//	User: Hi
//	Assistant: Hello
func (s *Store) ExportArchiveAsText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return renderArchive(s.archive)
}

// ExportSnapshot renders the archive and counts its chats under one lock, so
// the two always describe the same archive.
func (s *Store) ExportSnapshot() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return renderArchive(s.archive), len(s.archive)
}

func renderArchive(archive []models.Transcript) string {
	var b strings.Builder
	for i, t := range archive {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== Chat #%d ===\n", i+1)
		for _, msg := range t {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role.Label(), indentContinuation(msg.Content))
		}
	}
	return b.String()
}

// indentContinuation indents every line after the first by two spaces, so
// only role lines and chat headers start at column 0.
func indentContinuation(content string) string {
	return strings.ReplaceAll(content, "\n", "\n  ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
