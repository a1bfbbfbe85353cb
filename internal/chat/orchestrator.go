// internal/chat/orchestrator.go

// Package chat drives a streaming conversation turn: it resolves the agent
// and backend, records the user message and an assistant placeholder, and
// feeds decoded stream deltas into the conversation store.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bacoco/la-famille-agentui/internal/sse"
	"github.com/bacoco/la-famille-agentui/internal/state"
	"github.com/bacoco/la-famille-agentui/internal/transport"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

// Orchestrator runs chat turns. At most one stream is in flight; starting
// a new turn aborts the previous one.
type Orchestrator struct {
	conversations *state.ConversationStore
	agents        *state.AgentStore
	backends      *state.BackendStore
	client        *transport.Client
	tokens        *estimator

	mu       sync.Mutex
	inflight *inflightHandle
}

type inflightHandle struct {
	cancel context.CancelFunc
}

// NewOrchestrator wires an orchestrator over the given stores and
// transport client.
func NewOrchestrator(conversations *state.ConversationStore, agents *state.AgentStore, backends *state.BackendStore, client *transport.Client) *Orchestrator {
	return &Orchestrator{
		conversations: conversations,
		agents:        agents,
		backends:      backends,
		client:        client,
		tokens:        newEstimator(),
	}
}

type sendOptions struct {
	onDelta func(string)
}

// SendOption configures a single SendMessage call.
type SendOption func(*sendOptions)

// WithDelta registers a callback invoked for every content delta as it
// arrives, in stream order.
func WithDelta(fn func(string)) SendOption {
	return func(o *sendOptions) { o.onDelta = fn }
}

// SendMessage runs one chat turn and blocks until the stream settles. An
// empty agentID falls back to the active conversation's owning agent; an
// unresolvable agent or backend makes the call a no-op. A previous
// in-flight turn is aborted first. Aborting this turn (via ctx or Stop) is
// not an error: the partial content is kept and nil is returned.
func (o *Orchestrator) SendMessage(ctx context.Context, content string, agentID types.AgentID, opts ...SendOption) error {
	var options sendOptions
	for _, opt := range opts {
		opt(&options)
	}

	if agentID == "" {
		if conv := o.conversations.Active(); conv != nil {
			agentID = conv.AgentID
		}
	}
	agent := o.agents.Get(agentID)
	if agent == nil {
		slog.Warn("send ignored, agent not found", "agent_id", agentID)
		return nil
	}
	backend := o.backends.Get(agent.BackendID)
	if backend == nil {
		backend = o.backends.Default()
	}
	if backend == nil {
		slog.Warn("send ignored, no backend available", "agent_id", agentID)
		return nil
	}

	convID := o.conversations.ActiveID()
	if convID == "" {
		convID = o.conversations.CreateConversation(agentID)
	}

	o.conversations.AddMessage(convID, types.Message{
		Role:      types.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	})
	placeholderID := o.conversations.AddMessage(convID, types.Message{
		Role:        types.RoleAssistant,
		AgentID:     agentID,
		Timestamp:   time.Now(),
		IsStreaming: true,
	})

	req := &transport.CompletionRequest{
		Model:       agent.Model,
		Messages:    o.buildMessages(convID, placeholderID, agent.SystemPrompt),
		Temperature: &agent.Temperature,
		MaxTokens:   agent.MaxTokens,
	}
	// The token estimate encodes the whole history; only pay for it when
	// debug logging is on.
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("starting chat turn",
			"conversation_id", convID,
			"agent", agent.Name,
			"model", agent.Model,
			"prompt_tokens", o.tokens.estimate(agent.Model, req.Messages))
	}

	ctx, handle := o.takeover(ctx)
	defer o.release(handle)

	body, err := o.client.CompletionStream(ctx, backend, req)
	if err != nil {
		if isAbort(err) {
			o.conversations.SetMessageStreaming(convID, placeholderID, false)
			return nil
		}
		o.failMessage(convID, placeholderID, err)
		return err
	}

	dec := sse.NewDecoder(body)
	defer dec.Close()

	for {
		ev, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			o.failMessage(convID, placeholderID, err)
			return err
		}
		if ev.Content == "" {
			continue
		}
		o.conversations.AppendToMessage(convID, placeholderID, ev.Content)
		if options.onDelta != nil {
			options.onDelta(ev.Content)
		}
	}

	// Settled, whether the stream finished or was aborted mid-flight. The
	// accumulated content stays either way.
	o.conversations.SetMessageStreaming(convID, placeholderID, false)
	return nil
}

// buildMessages assembles the request history: the agent's system prompt
// first, then every prior message except the placeholder and any stored
// system messages.
func (o *Orchestrator) buildMessages(convID types.ConversationID, placeholderID types.MessageID, systemPrompt string) []transport.ChatMessage {
	var out []transport.ChatMessage
	if systemPrompt != "" {
		out = append(out, transport.ChatMessage{Role: string(types.RoleSystem), Content: systemPrompt})
	}
	conv := o.conversations.Get(convID)
	if conv == nil {
		return out
	}
	for _, msg := range conv.Messages {
		if msg.ID == placeholderID || msg.Role == types.RoleSystem {
			continue
		}
		out = append(out, transport.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}

// takeover aborts any in-flight turn and installs this one as current.
func (o *Orchestrator) takeover(ctx context.Context) (context.Context, *inflightHandle) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inflight != nil {
		o.inflight.cancel()
	}
	ctx, cancelFn := context.WithCancel(ctx)
	handle := &inflightHandle{cancel: cancelFn}
	o.inflight = handle
	return ctx, handle
}

func (o *Orchestrator) release(handle *inflightHandle) {
	handle.cancel()
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight == handle {
		o.inflight = nil
	}
}

// Stop aborts the in-flight turn, if any. The partial assistant content is
// kept.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight != nil {
		o.inflight.cancel()
		o.inflight = nil
	}
}

// IsStreaming reports whether the active conversation has a message still
// receiving deltas.
func (o *Orchestrator) IsStreaming() bool {
	conv := o.conversations.Active()
	if conv == nil {
		return false
	}
	for _, msg := range conv.Messages {
		if msg.IsStreaming {
			return true
		}
	}
	return false
}

// failMessage settles the placeholder as a visible error message.
func (o *Orchestrator) failMessage(convID types.ConversationID, msgID types.MessageID, cause error) {
	slog.Error("chat turn failed", "conversation_id", convID, "error", cause)
	content := "Error: " + cause.Error()
	isErr := true
	streaming := false
	o.conversations.UpdateMessage(convID, msgID, state.MessageUpdate{
		Content:     &content,
		IsError:     &isErr,
		IsStreaming: &streaming,
	})
}

func isAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
