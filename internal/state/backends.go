// internal/state/backends.go
package state

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

// DefaultBackendID identifies the built-in family backend seeded on first
// run.
const DefaultBackendID types.BackendID = "family-api"

// BackendStore is a JSON-file-backed backend registry. On first run it is
// seeded with the built-in family backend.
type BackendStore struct {
	mu       sync.RWMutex
	path     string
	backends []*types.APIBackend
}

func defaultBackend() *types.APIBackend {
	return &types.APIBackend{
		ID:           DefaultBackendID,
		Name:         "Family API",
		BaseURL:      "http://localhost:3100/v1",
		IsDefault:    true,
		Models:       []string{"maman", "henry", "sage", "nova", "blaise"},
		HealthStatus: types.HealthUnknown,
		TimeoutMs:    120000,
	}
}

// NewBackendStore loads backends from <dataDir>/backends.json, seeding the
// default backend when no file exists yet.
func NewBackendStore(dataDir string) (*BackendStore, error) {
	s := &BackendStore{path: filepath.Join(dataDir, "backends.json")}
	loaded, err := readJSON(s.path, &s.backends)
	if err != nil {
		return nil, fmt.Errorf("load backends: %w", err)
	}
	if !loaded {
		s.backends = []*types.APIBackend{defaultBackend()}
		s.save()
	}
	return s, nil
}

func (s *BackendStore) save() {
	if err := writeJSON(s.path, s.backends); err != nil {
		slog.Error("failed to persist backends", "error", err)
	}
}

func (s *BackendStore) find(id types.BackendID) *types.APIBackend {
	for _, b := range s.backends {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Add registers a backend and returns its ID. A backend arriving with an
// ID keeps it, so callers can use stable derived IDs; duplicates are
// rejected.
func (s *BackendStore) Add(backend types.APIBackend) (types.BackendID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backend.ID == "" {
		backend.ID = types.NewBackendID()
	} else if s.find(backend.ID) != nil {
		return "", fmt.Errorf("backend already exists: %s", backend.ID)
	}
	if backend.HealthStatus == "" {
		backend.HealthStatus = types.HealthUnknown
	}
	if backend.Models == nil {
		backend.Models = []string{}
	}
	s.backends = append(s.backends, &backend)
	s.save()
	return backend.ID, nil
}

// Update replaces a backend's mutable fields.
func (s *BackendStore) Update(id types.BackendID, backend types.APIBackend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.find(id)
	if existing == nil {
		return fmt.Errorf("backend not found: %s", id)
	}
	backend.ID = id
	*existing = backend
	s.save()
	return nil
}

// Remove deletes a backend.
func (s *BackendStore) Remove(id types.BackendID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.backends {
		if b.ID == id {
			s.backends = append(s.backends[:i], s.backends[i+1:]...)
			s.save()
			return nil
		}
	}
	return fmt.Errorf("backend not found: %s", id)
}

// SetDefault marks one backend as the default and clears the flag on every
// other backend.
func (s *BackendStore) SetDefault(id types.BackendID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return fmt.Errorf("backend not found: %s", id)
	}
	for _, b := range s.backends {
		b.IsDefault = b.ID == id
	}
	s.save()
	return nil
}

// Default returns a copy of the default backend, falling back to the first
// registered backend, or nil when none exist.
func (s *BackendStore) Default() *types.APIBackend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.backends {
		if b.IsDefault {
			c := *b
			return &c
		}
	}
	if len(s.backends) > 0 {
		c := *s.backends[0]
		return &c
	}
	return nil
}

// Get returns a copy of the backend, or nil.
func (s *BackendStore) Get(id types.BackendID) *types.APIBackend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.find(id)
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// List returns copies of all backends.
func (s *BackendStore) List() []*types.APIBackend {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.APIBackend, len(s.backends))
	for i, b := range s.backends {
		c := *b
		out[i] = &c
	}
	return out
}

// SetHealthStatus records a probe result. Unknown IDs are ignored; the
// monitor may race with a removal.
func (s *BackendStore) SetHealthStatus(id types.BackendID, status types.HealthStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.find(id)
	if b == nil {
		return
	}
	b.HealthStatus = status
	s.save()
}

// SetModels replaces a backend's cached model list.
func (s *BackendStore) SetModels(id types.BackendID, models []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.find(id)
	if b == nil {
		return
	}
	b.Models = models
	s.save()
}
