// internal/chat/tokens.go
package chat

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/bacoco/la-famille-agentui/internal/transport"
)

// estimator counts prompt tokens for logging and diagnostics. Encoders are
// cached per model; counting is best-effort and reports 0 when no encoder
// can be built.
type estimator struct {
	mu       sync.Mutex
	encoders map[string]*tiktoken.Tiktoken
}

func newEstimator() *estimator {
	return &estimator{encoders: make(map[string]*tiktoken.Tiktoken)}
}

func (e *estimator) encoderFor(model string) *tiktoken.Tiktoken {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encoders[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			e.encoders[model] = nil
			return nil
		}
	}
	e.encoders[model] = enc
	return enc
}

// estimate returns the approximate token count of a prompt.
func (e *estimator) estimate(model string, messages []transport.ChatMessage) int {
	enc := e.encoderFor(model)
	if enc == nil {
		return 0
	}
	total := 0
	for _, m := range messages {
		total += len(enc.Encode(m.Content, nil, nil))
	}
	return total
}
