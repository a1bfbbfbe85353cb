// internal/state/conversations.go
package state

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

const (
	// MaxConversations bounds the store. Past the cap the oldest unpinned
	// conversations are evicted; pinned ones are never evicted.
	MaxConversations = 100

	defaultTitle = "New conversation"
)

// ConversationStore is a JSON-file-backed conversation store. Mutations
// persist immediately except for streaming deltas, which stay in memory
// until the stream settles.
type ConversationStore struct {
	mu            sync.RWMutex
	path          string
	conversations []*types.Conversation
	activeID      types.ConversationID
}

type conversationsFile struct {
	Conversations []*types.Conversation `json:"conversations"`
	ActiveID      types.ConversationID  `json:"active_id,omitempty"`
}

// NewConversationStore loads conversations from <dataDir>/conversations.json.
// Any conversation persisted mid-stream is normalized back to settled.
func NewConversationStore(dataDir string) (*ConversationStore, error) {
	s := &ConversationStore{path: filepath.Join(dataDir, "conversations.json")}

	var file conversationsFile
	if _, err := readJSON(s.path, &file); err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	for _, conv := range file.Conversations {
		for i := range conv.Messages {
			conv.Messages[i].IsStreaming = false
		}
	}
	s.conversations = file.Conversations
	s.activeID = file.ActiveID
	if s.Get(s.activeID) == nil {
		s.activeID = ""
	}
	return s, nil
}

// save persists the current state. Streaming flags are stripped so a
// reloaded store never shows a message stuck mid-stream. Failures are
// logged, not returned; the in-memory state stays authoritative.
func (s *ConversationStore) save() {
	out := make([]*types.Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		c := *conv
		c.Messages = make([]types.Message, len(conv.Messages))
		for j, msg := range conv.Messages {
			msg.IsStreaming = false
			c.Messages[j] = msg
		}
		out[i] = &c
	}
	if err := writeJSON(s.path, conversationsFile{Conversations: out, ActiveID: s.activeID}); err != nil {
		slog.Error("failed to persist conversations", "error", err)
	}
}

func (s *ConversationStore) find(id types.ConversationID) *types.Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// evict trims the store down to MaxConversations, keeping every pinned
// conversation plus the most recently updated unpinned ones.
func (s *ConversationStore) evict() {
	if len(s.conversations) <= MaxConversations {
		return
	}

	var pinned, unpinned []*types.Conversation
	for _, conv := range s.conversations {
		if conv.IsPinned {
			pinned = append(pinned, conv)
		} else {
			unpinned = append(unpinned, conv)
		}
	}
	sort.SliceStable(unpinned, func(i, j int) bool {
		return unpinned[i].UpdatedAt.After(unpinned[j].UpdatedAt)
	})

	room := MaxConversations - len(pinned)
	if room < 0 {
		room = 0
	}
	if len(unpinned) > room {
		unpinned = unpinned[:room]
	}

	kept := make(map[types.ConversationID]bool, len(pinned)+len(unpinned))
	for _, conv := range pinned {
		kept[conv.ID] = true
	}
	for _, conv := range unpinned {
		kept[conv.ID] = true
	}

	filtered := s.conversations[:0]
	for _, conv := range s.conversations {
		if kept[conv.ID] {
			filtered = append(filtered, conv)
		}
	}
	s.conversations = filtered

	if s.find(s.activeID) == nil {
		s.activeID = ""
	}
}

// CreateConversation creates a conversation for the given agent, makes it
// active, and returns its ID. New conversations go to the front of the
// list. The store is trimmed if this pushes it past the cap.
func (s *ConversationStore) CreateConversation(agentID types.AgentID) types.ConversationID {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := &types.Conversation{
		ID:        types.NewConversationID(),
		Title:     defaultTitle,
		AgentID:   agentID,
		Messages:  []types.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations = append([]*types.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.evict()
	s.save()
	return conv.ID
}

// DeleteConversation removes a conversation. If it was active, the most
// recently updated remaining conversation becomes active.
func (s *ConversationStore) DeleteConversation(id types.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.conversations[:0]
	for _, conv := range s.conversations {
		if conv.ID != id {
			filtered = append(filtered, conv)
		}
	}
	if len(filtered) == len(s.conversations) {
		return
	}
	s.conversations = filtered

	if s.activeID == id {
		s.activeID = ""
		var latest *types.Conversation
		for _, conv := range s.conversations {
			if latest == nil || conv.UpdatedAt.After(latest.UpdatedAt) {
				latest = conv
			}
		}
		if latest != nil {
			s.activeID = latest.ID
		}
	}
	s.save()
}

// SetActive switches the active conversation. Unknown IDs clear it.
func (s *ConversationStore) SetActive(id types.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		s.activeID = ""
	} else {
		s.activeID = id
	}
	s.save()
}

// Active returns a copy of the active conversation, or nil.
func (s *ConversationStore) Active() *types.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyConversation(s.find(s.activeID))
}

// ActiveID returns the active conversation's ID, or empty.
func (s *ConversationStore) ActiveID() types.ConversationID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Get returns a copy of the conversation, or nil if it does not exist.
func (s *ConversationStore) Get(id types.ConversationID) *types.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyConversation(s.find(id))
}

// List returns copies of all conversations, newest-created first.
func (s *ConversationStore) List() []*types.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Conversation, len(s.conversations))
	for i, conv := range s.conversations {
		out[i] = copyConversation(conv)
	}
	return out
}

// UpdateTitle renames a conversation. Renaming does not count as activity,
// so UpdatedAt is left alone and the conversation's eviction rank is
// unchanged.
func (s *ConversationStore) UpdateTitle(id types.ConversationID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return
	}
	conv.Title = title
	s.save()
}

// TogglePin flips a conversation's pinned flag. Pinning is not activity;
// UpdatedAt is left alone.
func (s *ConversationStore) TogglePin(id types.ConversationID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return
	}
	conv.IsPinned = !conv.IsPinned
	s.save()
}

// AddMessage appends a message and returns its ID, or empty if the
// conversation does not exist. The first user message retitles a
// conversation still carrying the default title.
func (s *ConversationStore) AddMessage(id types.ConversationID, msg types.Message) types.MessageID {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(id)
	if conv == nil {
		return ""
	}

	if msg.ID == "" {
		msg.ID = types.NewMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now()

	if msg.Role == types.RoleUser && conv.Title == defaultTitle {
		conv.Title = deriveTitle(msg.Content)
	}

	s.save()
	return msg.ID
}

// AppendToMessage appends a streaming delta to a message's content. This
// is the hot path of a stream, so it mutates memory only; the settled
// content is persisted by the next full save.
func (s *ConversationStore) AppendToMessage(convID types.ConversationID, msgID types.MessageID, delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(convID)
	if conv == nil {
		return
	}
	for i := range conv.Messages {
		if conv.Messages[i].ID == msgID {
			conv.Messages[i].Content += delta
			return
		}
	}
}

// MessageUpdate holds the fields UpdateMessage can change; nil fields are
// left untouched.
type MessageUpdate struct {
	Content     *string
	IsStreaming *bool
	IsError     *bool
}

// UpdateMessage applies an update to a message and persists.
func (s *ConversationStore) UpdateMessage(convID types.ConversationID, msgID types.MessageID, upd MessageUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(convID)
	if conv == nil {
		return
	}
	for i := range conv.Messages {
		if conv.Messages[i].ID != msgID {
			continue
		}
		if upd.Content != nil {
			conv.Messages[i].Content = *upd.Content
		}
		if upd.IsStreaming != nil {
			conv.Messages[i].IsStreaming = *upd.IsStreaming
		}
		if upd.IsError != nil {
			conv.Messages[i].IsError = *upd.IsError
		}
		conv.UpdatedAt = time.Now()
		s.save()
		return
	}
}

// SetMessageStreaming sets a message's streaming flag and persists, which
// also flushes any content accumulated through AppendToMessage.
func (s *ConversationStore) SetMessageStreaming(convID types.ConversationID, msgID types.MessageID, streaming bool) {
	v := streaming
	s.UpdateMessage(convID, msgID, MessageUpdate{IsStreaming: &v})
}

// DeleteMessage removes a message from a conversation.
func (s *ConversationStore) DeleteMessage(convID types.ConversationID, msgID types.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.find(convID)
	if conv == nil {
		return
	}
	for i := range conv.Messages {
		if conv.Messages[i].ID == msgID {
			conv.Messages = append(conv.Messages[:i], conv.Messages[i+1:]...)
			conv.UpdatedAt = time.Now()
			s.save()
			return
		}
	}
}

// ClearAll removes every conversation.
func (s *ConversationStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = nil
	s.activeID = ""
	s.save()
}

// deriveTitle turns the first user message into a conversation title,
// truncating long content to 49 runes plus an ellipsis.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > 50 {
		return string(runes[:49]) + "…"
	}
	return content
}

func copyConversation(conv *types.Conversation) *types.Conversation {
	if conv == nil {
		return nil
	}
	c := *conv
	c.Messages = make([]types.Message, len(conv.Messages))
	copy(c.Messages, conv.Messages)
	return &c
}
