// internal/state/families.go
package state

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

// FamilyStore is a JSON-file-backed store of agent families.
type FamilyStore struct {
	mu       sync.RWMutex
	path     string
	families []*types.Family
}

// NewFamilyStore loads families from <dataDir>/families.json.
func NewFamilyStore(dataDir string) (*FamilyStore, error) {
	s := &FamilyStore{path: filepath.Join(dataDir, "families.json")}
	if _, err := readJSON(s.path, &s.families); err != nil {
		return nil, fmt.Errorf("load families: %w", err)
	}
	return s, nil
}

func (s *FamilyStore) save() {
	if err := writeJSON(s.path, s.families); err != nil {
		slog.Error("failed to persist families", "error", err)
	}
}

func (s *FamilyStore) find(id types.FamilyID) *types.Family {
	for _, f := range s.families {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Add stores a family and returns its ID.
func (s *FamilyStore) Add(family types.Family) types.FamilyID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if family.ID == "" {
		family.ID = types.NewFamilyID()
	}
	if family.CreatedAt.IsZero() {
		family.CreatedAt = time.Now()
	}
	if family.Members == nil {
		family.Members = []types.FamilyMember{}
	}
	s.families = append(s.families, &family)
	s.save()
	return family.ID
}

// Update replaces a family's mutable fields.
func (s *FamilyStore) Update(id types.FamilyID, family types.Family) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.find(id)
	if existing == nil {
		return fmt.Errorf("family not found: %s", id)
	}
	family.ID = id
	family.CreatedAt = existing.CreatedAt
	*existing = family
	s.save()
	return nil
}

// Remove deletes a family.
func (s *FamilyStore) Remove(id types.FamilyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.families {
		if f.ID == id {
			s.families = append(s.families[:i], s.families[i+1:]...)
			s.save()
			return nil
		}
	}
	return fmt.Errorf("family not found: %s", id)
}

// Get returns a copy of the family, or nil.
func (s *FamilyStore) Get(id types.FamilyID) *types.Family {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := s.find(id)
	if f == nil {
		return nil
	}
	return copyFamily(f)
}

// List returns copies of all families.
func (s *FamilyStore) List() []*types.Family {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Family, len(s.families))
	for i, f := range s.families {
		out[i] = copyFamily(f)
	}
	return out
}

// AddMember adds an agent to a family. Adding an agent twice is a no-op.
func (s *FamilyStore) AddMember(id types.FamilyID, member types.FamilyMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return fmt.Errorf("family not found: %s", id)
	}
	for _, m := range f.Members {
		if m.AgentID == member.AgentID {
			return nil
		}
	}
	f.Members = append(f.Members, member)
	s.save()
	return nil
}

// RemoveMember removes an agent from a family.
func (s *FamilyStore) RemoveMember(id types.FamilyID, agentID types.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.find(id)
	if f == nil {
		return fmt.Errorf("family not found: %s", id)
	}
	for i, m := range f.Members {
		if m.AgentID == agentID {
			f.Members = append(f.Members[:i], f.Members[i+1:]...)
			s.save()
			return nil
		}
	}
	return nil
}

func copyFamily(f *types.Family) *types.Family {
	c := *f
	c.Members = make([]types.FamilyMember, len(f.Members))
	copy(c.Members, f.Members)
	return &c
}
