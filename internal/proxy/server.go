// internal/proxy/server.go

// Package proxy implements the same-origin forwarding proxy: requests
// arrive with the destination backend described in X-Backend-* headers and
// are forwarded as OpenAI-compatible API calls, streaming bodies through
// untouched.
package proxy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Server is a lightweight HTTP handler for the forwarding proxy.
type Server struct {
	httpClient *http.Client
	mux        *http.ServeMux
}

// NewServer creates a proxy server.
func NewServer() *Server {
	s := &Server{
		httpClient: &http.Client{},
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/proxy", s.handleProxy)
	s.mux.HandleFunc("GET /api/proxy", s.handleProxy)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	baseURL := r.Header.Get("X-Backend-Url")
	if baseURL == "" {
		http.Error(w, `{"error":"X-Backend-Url header is required"}`, http.StatusBadRequest)
		return
	}

	endpoint := r.Header.Get("X-Backend-Endpoint")
	if endpoint == "" {
		if r.Method == http.MethodGet {
			endpoint = "/models"
		} else {
			endpoint = "/chat/completions"
		}
	}

	upstream, err := http.NewRequestWithContext(r.Context(), r.Method, baseURL+endpoint, r.Body)
	if err != nil {
		http.Error(w, `{"error":"invalid backend URL"}`, http.StatusBadRequest)
		return
	}
	upstream.Header.Set("Content-Type", "application/json")
	if accept := r.Header.Get("Accept"); accept != "" {
		upstream.Header.Set("Accept", accept)
	}
	if token := r.Header.Get("X-Backend-Token"); token != "" {
		upstream.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(upstream)
	if err != nil {
		slog.Error("proxy upstream request failed", "url", baseURL+endpoint, "error", err)
		http.Error(w, `{"error":"backend unreachable"}`, http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)

	if strings.HasPrefix(contentType, "text/event-stream") {
		s.stream(w, resp.Body)
		return
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.Warn("proxy response copy interrupted", "error", err)
	}
}

// stream copies an event stream chunk by chunk, flushing after every read
// so deltas reach the client as they arrive.
func (s *Server) stream(w http.ResponseWriter, body io.Reader) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		io.Copy(w, body)
		return
	}

	buf := make([]byte, 4096)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			flusher.Flush()
		}
		if err != nil {
			return
		}
	}
}
