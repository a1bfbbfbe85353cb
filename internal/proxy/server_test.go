package proxy

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProxyRequiresBackendURL(t *testing.T) {
	server := httptest.NewServer(NewServer())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/proxy", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without X-Backend-Url, got %d", resp.StatusCode)
	}
}

func TestProxyForwardsJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected upstream path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Error("token header not translated to bearer auth")
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"model":"maman"}` {
			t.Errorf("body not forwarded: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1"}`))
	}))
	defer upstream.Close()

	server := httptest.NewServer(NewServer())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/proxy", strings.NewReader(`{"model":"maman"}`))
	req.Header.Set("X-Backend-Url", upstream.URL+"/v1")
	req.Header.Set("X-Backend-Token", "secret")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"id":"cmpl-1"}` {
		t.Errorf("response not forwarded: %s", body)
	}
}

func TestProxyDefaultsModelsEndpointForGET(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected upstream path %q", r.URL.Path)
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer upstream.Close()

	server := httptest.NewServer(NewServer())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/proxy", nil)
	req.Header.Set("X-Backend-Url", upstream.URL+"/v1")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d", resp.StatusCode)
	}
}

func TestProxyStreamsEventStream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl := w.(http.Flusher)
		for i := 0; i < 3; i++ {
			fmt.Fprintf(w, "data: {\"n\":%d}\n\n", i)
			fl.Flush()
		}
	}))
	defer upstream.Close()

	server := httptest.NewServer(NewServer())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/proxy", strings.NewReader("{}"))
	req.Header.Set("X-Backend-Url", upstream.URL)
	req.Header.Set("X-Backend-Endpoint", "/chat/completions")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); !strings.HasPrefix(got, "text/event-stream") {
		t.Errorf("content type %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if count := strings.Count(string(body), "data: "); count != 3 {
		t.Errorf("expected 3 events, got %d:\n%s", count, body)
	}
}

func TestProxyUnreachableUpstreamIs502(t *testing.T) {
	server := httptest.NewServer(NewServer())
	defer server.Close()

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/proxy", strings.NewReader("{}"))
	req.Header.Set("X-Backend-Url", "http://127.0.0.1:1/v1")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}
