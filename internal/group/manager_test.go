package group

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stlalpha/warroom/internal/identity"
)

func newTestManagers(t *testing.T) (*Manager, *identity.Manager) {
	t.Helper()
	dir := t.TempDir()
	ids, err := identity.NewManager(dir)
	if err != nil {
		t.Fatalf("identity.NewManager: %v", err)
	}
	m, err := NewManager(dir, ids)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, ids
}

func TestCreateMakesCreatorFirstMember(t *testing.T) {
	m, _ := newTestManagers(t)

	g, err := m.Create("Recon", "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(g.Members) != 1 || g.Members[0] != "alice" {
		t.Errorf("members = %v, want [alice]", g.Members)
	}
	if !m.IsMember("alice", "Recon") {
		t.Error("creator must be a member")
	}
}

func TestCreateDuplicateName(t *testing.T) {
	m, _ := newTestManagers(t)
	m.Create("Recon", "alice")
	if _, err := m.Create("Recon", "bob"); !errors.Is(err, ErrGroupExists) {
		t.Errorf("duplicate Create = %v, want ErrGroupExists", err)
	}
}

func TestIsMemberMissingGroupIsFalse(t *testing.T) {
	m, _ := newTestManagers(t)
	if m.IsMember("alice", "Phantom") {
		t.Error("membership in a missing group must be false, not an error")
	}
}

func TestAddMemberRules(t *testing.T) {
	m, ids := newTestManagers(t)
	ids.Register("alice", 1, 3, "Apollo")
	ids.Register("bob", 2, 1, "Gemini")
	m.Create("Recon", "alice")

	if err := m.AddMember("Phantom", "alice", "bob"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("AddMember to missing group = %v, want ErrGroupNotFound", err)
	}
	if err := m.AddMember("Recon", "bob", "bob"); !errors.Is(err, ErrNotCreator) {
		t.Errorf("AddMember by non-creator = %v, want ErrNotCreator", err)
	}
	if err := m.AddMember("Recon", "alice", "ghost"); !errors.Is(err, ErrNoSuchOperator) {
		t.Errorf("AddMember of unregistered operator = %v, want ErrNoSuchOperator", err)
	}

	if err := m.AddMember("Recon", "alice", "bob"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if !m.IsMember("bob", "Recon") {
		t.Error("bob should be a member after AddMember")
	}
	if err := m.AddMember("Recon", "alice", "bob"); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("repeated AddMember = %v, want ErrAlreadyMember", err)
	}
}

func TestGroupCapacity(t *testing.T) {
	m, ids := newTestManagers(t)
	ids.Register("creator", 1, 4, "Apollo")
	m.Create("Recon", "creator")

	// Creator occupies slot one; nine more fill the group.
	for i := 0; i < MaxMembers-1; i++ {
		name := fmt.Sprintf("op%02d", i)
		if _, err := ids.Register(name, 1, 1, "Apollo"); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
		if err := m.AddMember("Recon", "creator", name); err != nil {
			t.Fatalf("AddMember %s: %v", name, err)
		}
	}

	ids.Register("overflow", 1, 1, "Apollo")
	if err := m.AddMember("Recon", "creator", "overflow"); !errors.Is(err, ErrGroupFull) {
		t.Errorf("11th member = %v, want ErrGroupFull", err)
	}

	g, err := m.Lookup("Recon")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(g.Members) != MaxMembers {
		t.Errorf("stored member list has %d entries after rejected add, want %d",
			len(g.Members), MaxMembers)
	}
}

func TestListFor(t *testing.T) {
	m, ids := newTestManagers(t)
	ids.Register("alice", 1, 3, "Apollo")
	ids.Register("bob", 2, 1, "Gemini")
	m.Create("Recon", "alice")
	m.Create("Strike", "bob")
	m.AddMember("Strike", "bob", "alice")

	groups, err := m.ListFor("alice")
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "Recon" || groups[1].Name != "Strike" {
		t.Errorf("ListFor(alice) = %+v, want [Recon Strike] in file order", groups)
	}

	groups, _ = m.ListFor("bob")
	if len(groups) != 1 || groups[0].Name != "Strike" {
		t.Errorf("ListFor(bob) = %+v, want [Strike]", groups)
	}
}
