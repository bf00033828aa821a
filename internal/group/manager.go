// Package group manages operations groups: named member lists with a
// creator, persisted as fixed records in the flat group file.
package group

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/store"
)

const (
	// MaxName is the group name field capacity, terminator included.
	MaxName = 50
	// MaxMembers bounds the member list; the creator counts toward it.
	MaxMembers = 10
)

// FileName is the group store file within the data directory.
const FileName = "groups.dat"

var (
	ErrGroupNotFound  = errors.New("group: group not found")
	ErrGroupExists    = errors.New("group: group name already exists")
	ErrNameTooLong    = errors.New("group: group name too long")
	ErrNotCreator     = errors.New("group: only the creator may add members")
	ErrNoSuchOperator = errors.New("group: operator does not exist")
	ErrAlreadyMember  = errors.New("group: operator is already a member")
	ErrGroupFull      = errors.New("group: member limit reached")
)

// record is the fixed on-disk layout of one group.
type record struct {
	Name       [MaxName]byte
	Creator    [identity.MaxUsername]byte
	Members    [MaxMembers][identity.MaxUsername]byte
	NumMembers int32
}

// Group is the in-memory form of a group record.
type Group struct {
	Name    string
	Creator string
	Members []string
}

func (r *record) group() *Group {
	g := &Group{
		Name:    store.FieldString(r.Name[:]),
		Creator: store.FieldString(r.Creator[:]),
	}
	n := int(r.NumMembers)
	if n > MaxMembers {
		n = MaxMembers
	}
	for i := 0; i < n; i++ {
		g.Members = append(g.Members, store.FieldString(r.Members[i][:]))
	}
	return g
}

func (r *record) hasMember(username string) bool {
	if store.FieldString(r.Creator[:]) == username {
		return true
	}
	n := int(r.NumMembers)
	if n > MaxMembers {
		n = MaxMembers
	}
	for i := 0; i < n; i++ {
		if store.FieldString(r.Members[i][:]) == username {
			return true
		}
	}
	return false
}

// Directory is the slice of the operator directory the group manager
// needs: membership candidates must be registered operators.
type Directory interface {
	Exists(username string) (bool, error)
}

// Manager provides group directory operations over the flat store.
type Manager struct {
	store *store.Store[record]
	dir   Directory
}

// NewManager creates a group manager rooted at dataPath.
func NewManager(dataPath string, dir Directory) (*Manager, error) {
	st, err := store.New[record](filepath.Join(dataPath, FileName))
	if err != nil {
		return nil, err
	}
	return &Manager{store: st, dir: dir}, nil
}

// Lookup returns the group with the exact name.
func (m *Manager) Lookup(name string) (*Group, error) {
	rec, _, err := m.findRecord(name)
	if err != nil {
		return nil, err
	}
	return rec.group(), nil
}

func (m *Manager) findRecord(name string) (*record, int64, error) {
	rec, offset, err := m.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Name[:]) == name
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, ErrGroupNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return rec, offset, nil
}

// Exists reports whether a group with the name exists.
func (m *Manager) Exists(name string) (bool, error) {
	_, _, err := m.findRecord(name)
	if errors.Is(err, ErrGroupNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsMember reports whether username is the creator of, or listed in, the
// named group. A missing group is simply not a membership, not an error.
func (m *Manager) IsMember(username, groupName string) bool {
	rec, _, err := m.findRecord(groupName)
	if err != nil {
		if !errors.Is(err, ErrGroupNotFound) {
			log.Printf("WARN: group: membership check for %q failed: %v", groupName, err)
		}
		return false
	}
	return rec.hasMember(username)
}

// Create registers a new group whose sole initial member is the creator.
func (m *Manager) Create(name, creator string) (*Group, error) {
	if !store.Fits(name, MaxName) {
		return nil, fmt.Errorf("%w: max %d characters", ErrNameTooLong, MaxName-1)
	}
	exists, err := m.Exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrGroupExists
	}

	rec := &record{NumMembers: 1}
	store.SetField(rec.Name[:], name)
	store.SetField(rec.Creator[:], creator)
	store.SetField(rec.Members[0][:], creator)
	if err := m.store.Append(rec); err != nil {
		return nil, err
	}
	log.Printf("INFO: group: %q created by %q", name, creator)
	return rec.group(), nil
}

// AddMember appends newMember to the named group and persists the updated
// record in place. Only the creator may add members; the new member must
// be a registered operator, not already listed, and the list must have
// room.
func (m *Manager) AddMember(groupName, requester, newMember string) error {
	rec, offset, err := m.findRecord(groupName)
	if err != nil {
		return err
	}
	if store.FieldString(rec.Creator[:]) != requester {
		return ErrNotCreator
	}
	if !store.Fits(newMember, identity.MaxUsername) {
		return fmt.Errorf("%w: %q", ErrNoSuchOperator, newMember)
	}
	exists, err := m.dir.Exists(newMember)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrNoSuchOperator, newMember)
	}
	if rec.hasMember(newMember) {
		return ErrAlreadyMember
	}
	if int(rec.NumMembers) >= MaxMembers {
		return ErrGroupFull
	}

	store.SetField(rec.Members[rec.NumMembers][:], newMember)
	rec.NumMembers++
	if err := m.store.UpdateAt(offset, rec); err != nil {
		return err
	}
	log.Printf("INFO: group: %q added to %q", newMember, groupName)
	return nil
}

// ListFor returns every group username belongs to, in file order.
func (m *Manager) ListFor(username string) ([]Group, error) {
	var groups []Group
	err := m.store.ScanAll(func(r *record, _ int64) bool {
		if r.hasMember(username) {
			groups = append(groups, *r.group())
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}
