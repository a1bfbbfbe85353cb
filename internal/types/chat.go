// internal/types/chat.go
package types

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in a conversation. Assistant messages accumulate
// content incrementally while IsStreaming is set.
type Message struct {
	ID          MessageID `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	AgentID     AgentID   `json:"agent_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	IsStreaming bool      `json:"is_streaming,omitempty"`
	IsError     bool      `json:"is_error,omitempty"`
}

// Conversation is an ordered message history owned by one agent.
// Message order is insertion order.
type Conversation struct {
	ID        ConversationID `json:"id"`
	Title     string         `json:"title"`
	AgentID   AgentID        `json:"agent_id"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	IsPinned  bool           `json:"is_pinned"`
}
