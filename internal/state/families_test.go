package state

import (
	"testing"

	"github.com/bacoco/la-famille-agentui/internal/types"
)

func newTestFamilyStore(t *testing.T) *FamilyStore {
	t.Helper()
	s, err := NewFamilyStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFamilyAddAndMembers(t *testing.T) {
	s := newTestFamilyStore(t)

	id := s.Add(types.Family{Name: "La Famille", Emoji: "🏠"})
	if err := s.AddMember(id, types.FamilyMember{AgentID: "agent-1", Role: "lead", Order: 0}); err != nil {
		t.Fatal(err)
	}
	// Duplicate member is a no-op.
	if err := s.AddMember(id, types.FamilyMember{AgentID: "agent-1", Role: "lead", Order: 1}); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Get(id).Members); got != 1 {
		t.Errorf("expected 1 member, got %d", got)
	}

	if err := s.RemoveMember(id, "agent-1"); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Get(id).Members); got != 0 {
		t.Errorf("expected no members, got %d", got)
	}
}

func TestFamilyUpdateKeepsCreatedAt(t *testing.T) {
	s := newTestFamilyStore(t)

	id := s.Add(types.Family{Name: "La Famille"})
	created := s.Get(id).CreatedAt

	upd := *s.Get(id)
	upd.Name = "La Grande Famille"
	if err := s.Update(id, upd); err != nil {
		t.Fatal(err)
	}
	got := s.Get(id)
	if got.Name != "La Grande Famille" {
		t.Errorf("name not updated: %q", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("CreatedAt changed on update")
	}
}

func TestFamilyRemove(t *testing.T) {
	s := newTestFamilyStore(t)

	id := s.Add(types.Family{Name: "La Famille"})
	if err := s.Remove(id); err != nil {
		t.Fatal(err)
	}
	if s.Get(id) != nil {
		t.Error("family still present after removal")
	}
	if err := s.Remove(id); err == nil {
		t.Error("expected error removing a missing family")
	}
}
