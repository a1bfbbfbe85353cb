// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type ConversationID string
type MessageID string
type AgentID string
type BackendID string
type FamilyID string
type PipelineID string

func NewConversationID() ConversationID {
	return ConversationID("conv-" + uuid.New().String())
}

func NewMessageID() MessageID {
	return MessageID("msg-" + uuid.New().String())
}

func NewAgentID() AgentID {
	return AgentID("agent-" + uuid.New().String())
}

func NewBackendID() BackendID {
	return BackendID("backend-" + uuid.New().String())
}

func NewFamilyID() FamilyID {
	return FamilyID("family-" + uuid.New().String())
}
