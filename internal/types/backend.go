// internal/types/backend.go
package types

import "time"

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// DefaultBackendTimeout applies when a backend has no timeout configured.
const DefaultBackendTimeout = 120 * time.Second

// APIBackend is an OpenAI-compatible completion endpoint. The model list is
// a cache refreshed by the health monitor. At steady state exactly one
// backend is the default.
type APIBackend struct {
	ID           BackendID    `json:"id"`
	Name         string       `json:"name"`
	BaseURL      string       `json:"base_url"`
	AuthToken    string       `json:"auth_token,omitempty"`
	IsDefault    bool         `json:"is_default"`
	Models       []string     `json:"models"`
	HealthStatus HealthStatus `json:"health_status"`
	TimeoutMs    int          `json:"timeout_ms"`
}

// Timeout returns the per-request timeout, falling back to
// DefaultBackendTimeout when unset.
func (b *APIBackend) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return DefaultBackendTimeout
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}
