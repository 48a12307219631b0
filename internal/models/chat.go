package models

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label is the display name used in exports ("User", "Assistant").
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Transcript is an ordered conversation, oldest message first.
type Transcript []ChatMessage

// Clone returns a copy that shares no backing array with t.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return Transcript{}
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Reply      ChatMessage `json:"reply"`
	Transcript Transcript  `json:"transcript"`
}

// ArchiveEntry is the list view of one archived conversation.
type ArchiveEntry struct {
	Index        int    `json:"index"` // 1-based
	MessageCount int    `json:"message_count"`
	Preview      string `json:"preview"`
}
