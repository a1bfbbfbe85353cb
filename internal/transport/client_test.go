package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bacoco/la-famille-agentui/internal/sse"
	"github.com/bacoco/la-famille-agentui/internal/types"
)

func testBackend(baseURL string) *types.APIBackend {
	return &types.APIBackend{
		ID:        "backend-test",
		Name:      "Test",
		BaseURL:   baseURL,
		AuthToken: "test-token",
		TimeoutMs: 5000,
	}
}

func TestCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path '/v1/chat/completions', got %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Error("missing or invalid auth header")
		}

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		json.Unmarshal(body, &req)
		if req["model"] != "maman" {
			t.Errorf("expected model 'maman', got %v", req["model"])
		}
		if req["stream"] != false {
			t.Errorf("expected stream=false, got %v", req["stream"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "bonjour"}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	client := New()
	resp, err := client.Completion(context.Background(), testBackend(server.URL+"/v1"), &CompletionRequest{
		Model:    "maman",
		Messages: []ChatMessage{{Role: "user", Content: "salut"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "bonjour" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCompletionErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	client := New()
	_, err := client.Completion(context.Background(), testBackend(server.URL), &CompletionRequest{Model: "m"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("error missing status or body: %v", err)
	}
}

func TestCompletionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		json.Unmarshal(body, &req)
		if req["stream"] != true {
			t.Errorf("expected stream=true, got %v", req["stream"])
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"bon\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"jour\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := New()
	body, err := client.CompletionStream(context.Background(), testBackend(server.URL), &CompletionRequest{
		Model:    "maman",
		Messages: []ChatMessage{{Role: "user", Content: "salut"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	dec := sse.NewDecoder(body)
	defer dec.Close()

	var got string
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got += ev.Content
	}
	if got != "bonjour" {
		t.Errorf("expected 'bonjour', got %q", got)
	}
}

func TestCompletionStreamNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New()
	_, err := client.CompletionStream(context.Background(), testBackend(server.URL), &CompletionRequest{Model: "m"})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error missing status: %v", err)
	}
}

func TestProxyRouting(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Backend-Url") != "http://upstream.example/v1" {
			t.Errorf("unexpected X-Backend-Url: %q", r.Header.Get("X-Backend-Url"))
		}
		if r.Header.Get("X-Backend-Endpoint") != "/chat/completions" {
			t.Errorf("unexpected X-Backend-Endpoint: %q", r.Header.Get("X-Backend-Endpoint"))
		}
		if r.Header.Get("X-Backend-Token") != "test-token" {
			t.Errorf("unexpected X-Backend-Token: %q", r.Header.Get("X-Backend-Token"))
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "cmpl-1", "choices": []any{}})
	}))
	defer proxy.Close()

	client := NewWithProxy(proxy.URL)
	_, err := client.Completion(context.Background(), testBackend("http://upstream.example/v1"), &CompletionRequest{Model: "m"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestProbeHealthStripsVersionSegment(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New()
	for _, base := range []string{server.URL + "/v1", server.URL + "/v1/"} {
		if !client.ProbeHealth(context.Background(), testBackend(base)) {
			t.Errorf("expected healthy for base %q", base)
		}
		if gotPath != "/health" {
			t.Errorf("base %q probed %q, want /health", base, gotPath)
		}
	}
}

func TestProbeHealthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New()
	if client.ProbeHealth(context.Background(), testBackend(server.URL)) {
		t.Error("expected unhealthy for 500 response")
	}
	if client.ProbeHealth(context.Background(), testBackend("http://127.0.0.1:1/v1")) {
		t.Error("expected unhealthy for unreachable backend")
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("expected path '/v1/models', got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": "maman"}, {"id": "henry"}},
		})
	}))
	defer server.Close()

	client := New()
	models := client.ListModels(context.Background(), testBackend(server.URL+"/v1"))
	if len(models) != 2 || models[0] != "maman" || models[1] != "henry" {
		t.Errorf("unexpected models: %v", models)
	}
}

func TestListModelsFailureResolvesEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := New()
	if got := client.ListModels(context.Background(), testBackend(server.URL)); len(got) != 0 {
		t.Errorf("expected empty list for malformed body, got %v", got)
	}
	if got := client.ListModels(context.Background(), testBackend("http://127.0.0.1:1")); len(got) != 0 {
		t.Errorf("expected empty list for unreachable backend, got %v", got)
	}
}
