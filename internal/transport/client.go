// internal/transport/client.go

// Package transport issues HTTP requests against configured
// OpenAI-compatible backends, either directly or through the same-origin
// forwarding proxy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bacoco/la-famille-agentui/internal/cancel"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

const (
	healthProbeTimeout = 5 * time.Second
	listModelsTimeout  = 10 * time.Second
)

// Client talks to APIBackends. With a proxy URL set, every request is sent
// to the forwarding proxy with the destination carried in X-Backend-*
// headers; otherwise requests go straight to the backend's base URL. The
// contract is identical either way.
type Client struct {
	httpClient *http.Client
	proxyURL   string
}

// New creates a Client that talks to backends directly.
func New() *Client {
	return &Client{httpClient: &http.Client{}}
}

// NewWithProxy creates a Client that routes every request through the
// forwarding proxy at proxyURL.
func NewWithProxy(proxyURL string) *Client {
	return &Client{httpClient: &http.Client{}, proxyURL: proxyURL}
}

// ChatMessage is the wire message format for completion requests.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the OpenAI chat completions request body. Stream is
// set explicitly by the entry points, never inferred.
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// CompletionChoice is a single completion choice in a sync response.
type CompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the non-streaming chat completions response body.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitempty"`
}

// newRequest builds a request for the given destination, routing through
// the proxy when configured.
func (c *Client) newRequest(ctx context.Context, method, baseURL, token, endpoint string, body io.Reader) (*http.Request, error) {
	if c.proxyURL != "" {
		req, err := http.NewRequestWithContext(ctx, method, c.proxyURL, body)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-Backend-Url", baseURL)
		req.Header.Set("X-Backend-Endpoint", endpoint)
		if token != "" {
			req.Header.Set("X-Backend-Token", token)
		}
		return req, nil
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// Completion sends a non-streaming chat completion request. The backend's
// timeout bounds the whole call and is merged with the caller's context.
func (c *Client) Completion(ctx context.Context, backend *types.APIBackend, req *CompletionRequest) (*CompletionResponse, error) {
	req.Stream = false
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancelFn := context.WithTimeout(ctx, backend.Timeout())
	defer cancelFn()

	httpReq, err := c.newRequest(ctx, http.MethodPost, backend.BaseURL, backend.AuthToken, "/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("chat completion failed", resp)
	}

	var out CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &out, nil
}

// CompletionStream sends a streaming chat completion request and returns
// the raw event-stream body for incremental decoding. The backend timeout
// only guards connection establishment; once headers arrive, cancellation
// is solely the caller's responsibility via ctx. A stalled-but-connected
// stream is therefore not independently timed out.
func (c *Client) CompletionStream(ctx context.Context, backend *types.APIBackend, req *CompletionRequest) (io.ReadCloser, error) {
	req.Stream = true
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	guard := cancel.Connect(ctx, backend.Timeout())

	httpReq, err := c.newRequest(guard.Context(), http.MethodPost, backend.BaseURL, backend.AuthToken, "/chat/completions", bytes.NewReader(payload))
	if err != nil {
		guard.Cancel()
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		guard.Cancel()
		return nil, fmt.Errorf("sending request: %w", err)
	}
	guard.Settle()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError("streaming chat completion failed", resp)
		resp.Body.Close()
		guard.Cancel()
		return nil, err
	}

	return &guardedBody{body: resp.Body, guard: guard}, nil
}

// ProbeHealth checks a backend's health endpoint. Network failure and
// non-OK status both mean unhealthy; this never returns an error.
func (c *Client) ProbeHealth(ctx context.Context, backend *types.APIBackend) bool {
	ctx, cancelFn := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancelFn()

	req, err := c.newRequest(ctx, http.MethodGet, healthBase(backend.BaseURL), "", "/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// ListModels fetches the backend's model list. Any failure resolves to an
// empty list.
func (c *Client) ListModels(ctx context.Context, backend *types.APIBackend) []string {
	ctx, cancelFn := context.WithTimeout(ctx, listModelsTimeout)
	defer cancelFn()

	req, err := c.newRequest(ctx, http.MethodGet, backend.BaseURL, backend.AuthToken, "/models", nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}

	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}
	models := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		models = append(models, m.ID)
	}
	return models
}

// statusError builds a descriptive error from a non-2xx response,
// including the body text on a best-effort basis.
func statusError(prefix string, resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if readErr != nil || len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%s (%d): %s", prefix, resp.StatusCode, resp.Status)
	}
	return fmt.Errorf("%s (%d): %s", prefix, resp.StatusCode, string(body))
}

// healthBase strips a trailing API-version segment from the base URL; the
// health endpoint lives above /v1.
func healthBase(baseURL string) string {
	b := strings.TrimSuffix(baseURL, "/")
	return strings.TrimSuffix(b, "/v1")
}

// guardedBody ties the stream body to its cancellation guard so the
// derived context is released exactly when the stream is closed.
type guardedBody struct {
	body  io.ReadCloser
	guard *cancel.Guard
}

func (g *guardedBody) Read(p []byte) (int, error) {
	return g.body.Read(p)
}

func (g *guardedBody) Close() error {
	err := g.body.Close()
	g.guard.Cancel()
	return err
}
