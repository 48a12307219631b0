package services

import (
	"context"

	"github.com/google/uuid"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/session"
)

// ErrorReplyPrefix marks assistant messages that carry a completion failure.
const ErrorReplyPrefix = "Error: "

// EventPublisher delivers live updates to whoever is watching a session.
type EventPublisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage)
}

type ChatService struct {
	completer Completer
	events    EventPublisher
}

func NewChatService(completer Completer, events EventPublisher) *ChatService {
	return &ChatService{
		completer: completer,
		events:    events,
	}
}

// Submit runs one turn: the prompt is recorded first, then the completion.
// A failed completion is written to the transcript as an assistant message
// and is never returned to the caller. The only error is a turn already in
// flight for the same session.
func (s *ChatService) Submit(ctx context.Context, store *session.Store, prompt string) (models.ChatMessage, error) {
	if !store.BeginTurn() {
		return models.ChatMessage{}, errTurnInProgress
	}
	defer store.EndTurn()

	pos := store.RecordUserTurn(prompt)
	s.publishTurn(ctx, store.ID(), pos, models.ChatMessage{Role: models.RoleUser, Content: prompt})

	s.publish(ctx, store.ID(), models.WSMessage{
		Type:    models.EventStatusUpdate,
		Payload: models.StatusUpdate{SessionID: store.ID(), StepName: "Thinking", Pending: true},
	})

	reply := ReplyText(s.completer.Generate(ctx, prompt))

	pos = store.RecordAssistantTurn(reply)
	msg := models.ChatMessage{Role: models.RoleAssistant, Content: reply}
	s.publishTurn(ctx, store.ID(), pos, msg)

	s.publish(ctx, store.ID(), models.WSMessage{
		Type:    models.EventStatusUpdate,
		Payload: models.StatusUpdate{SessionID: store.ID(), StepName: "Done", Pending: false},
	})

	return msg, nil
}

// ReplyText converts a completion result into the assistant message content.
func ReplyText(res CompletionResult) string {
	if res.OK() {
		return res.Text
	}
	return ErrorReplyPrefix + res.Err.Error()
}

// StartNewConversation and ClearAll fail while a turn is in flight, so a
// reply never lands in a transcript its prompt has left.
func (s *ChatService) StartNewConversation(ctx context.Context, store *session.Store) (models.NewConversationResponse, error) {
	if !store.BeginTurn() {
		return models.NewConversationResponse{}, errTurnInProgress
	}
	defer store.EndTurn()

	archived := store.StartNewConversation()
	size := store.ArchiveSize()

	if archived {
		s.publish(ctx, store.ID(), models.WSMessage{
			Type:    models.EventNewChat,
			Payload: models.ArchiveEvent{SessionID: store.ID(), ArchiveSize: size},
		})
	}

	return models.NewConversationResponse{Archived: archived, ArchiveSize: size}, nil
}

func (s *ChatService) ClearAll(ctx context.Context, store *session.Store) error {
	if !store.BeginTurn() {
		return errTurnInProgress
	}
	defer store.EndTurn()

	store.ClearAll()
	s.publish(ctx, store.ID(), models.WSMessage{
		Type:    models.EventCleared,
		Payload: models.ArchiveEvent{SessionID: store.ID()},
	})
	return nil
}

func (s *ChatService) publishTurn(ctx context.Context, sessionID uuid.UUID, pos int, msg models.ChatMessage) {
	s.publish(ctx, sessionID, models.WSMessage{
		Type:    models.EventTurn,
		Payload: models.TurnEvent{SessionID: sessionID, Position: pos, Message: msg},
	})
}

func (s *ChatService) publish(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, sessionID, msg)
}
