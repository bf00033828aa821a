// Package identity manages operator records: registration, lookup and
// authentication against the flat operator file.
package identity

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/stlalpha/warroom/internal/logging"
	"github.com/stlalpha/warroom/internal/store"
)

// Field capacities, including the NUL terminator byte.
const (
	MaxUsername = 100
	MaxUnit     = 50
)

// FileName is the operator store file within the data directory.
const FileName = "operators.dat"

var (
	ErrOperatorNotFound = errors.New("identity: operator not found")
	ErrOperatorExists   = errors.New("identity: username already exists")
	ErrUsernameTooLong  = errors.New("identity: username too long")

	// ErrAuthFailed covers both unknown username and wrong password.
	// The two cases are deliberately indistinguishable.
	ErrAuthFailed = errors.New("identity: authentication failed")
)

// record is the fixed on-disk layout of one operator.
type record struct {
	Username [MaxUsername]byte
	Password int32
	Rank     int32
	Unit     [MaxUnit]byte
}

// Operator is the in-memory form of an operator record.
type Operator struct {
	Username string
	Password int
	Rank     Rank
	Unit     string
}

func (r *record) operator() *Operator {
	return &Operator{
		Username: store.FieldString(r.Username[:]),
		Password: int(r.Password),
		Rank:     Rank(r.Rank),
		Unit:     store.FieldString(r.Unit[:]),
	}
}

// Manager provides operator directory operations over the flat store.
type Manager struct {
	store *store.Store[record]
}

// NewManager creates an operator manager rooted at dataPath.
func NewManager(dataPath string) (*Manager, error) {
	st, err := store.New[record](filepath.Join(dataPath, FileName))
	if err != nil {
		return nil, err
	}
	return &Manager{store: st}, nil
}

// Lookup returns the operator with the exact (case-sensitive) username.
func (m *Manager) Lookup(username string) (*Operator, error) {
	rec, _, err := m.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Username[:]) == username
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.operator(), nil
}

// Exists reports whether an operator with the username is registered.
func (m *Manager) Exists(username string) (bool, error) {
	_, err := m.Lookup(username)
	if errors.Is(err, ErrOperatorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// OperatorUnit returns the unit of the named operator, for access-control
// evaluation. Missing operators report ok=false.
func (m *Manager) OperatorUnit(username string) (string, bool) {
	op, err := m.Lookup(username)
	if err != nil {
		if !errors.Is(err, ErrOperatorNotFound) {
			log.Printf("WARN: identity: unit lookup for %q failed: %v", username, err)
		}
		return "", false
	}
	return op.Unit, true
}

// Authenticate verifies the username/password pair. Unknown usernames and
// wrong passwords both return ErrAuthFailed; callers must not be able to
// tell which occurred.
func (m *Manager) Authenticate(username string, password int) (*Operator, error) {
	rec, _, err := m.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Username[:]) == username && int(r.Password) == password
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAuthFailed
	}
	if err != nil {
		return nil, err
	}
	logging.Debug("identity: authenticated %q (rank %s, unit %s)",
		username, Rank(rec.Rank), store.FieldString(rec.Unit[:]))
	return rec.operator(), nil
}

// Register creates a new operator. The username must be unique and fit its
// field; an oversized unit degrades to "N/A" with a warning, and an
// out-of-range rank selection degrades to Recruit.
func (m *Manager) Register(username string, password int, rankOption int, unit string) (*Operator, error) {
	if !store.Fits(username, MaxUsername) {
		return nil, fmt.Errorf("%w: max %d characters", ErrUsernameTooLong, MaxUsername-1)
	}
	exists, err := m.Exists(username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrOperatorExists
	}

	rank, ok := RankFromOption(rankOption)
	if !ok {
		log.Printf("WARN: identity: invalid rank option %d for %q, defaulting to %s",
			rankOption, username, RankRecruit)
	}
	if !store.Fits(unit, MaxUnit) {
		log.Printf("WARN: identity: unit name for %q exceeds %d characters, storing N/A",
			username, MaxUnit-1)
		unit = "N/A"
	}

	rec := &record{Password: int32(password), Rank: int32(rank)}
	store.SetField(rec.Username[:], username)
	store.SetField(rec.Unit[:], unit)
	if err := m.store.Append(rec); err != nil {
		return nil, err
	}
	log.Printf("INFO: identity: registered operator %q (%s, %s)", username, rank, unit)
	return rec.operator(), nil
}

// All returns every registered operator in file order.
func (m *Manager) All() ([]Operator, error) {
	var ops []Operator
	err := m.store.ScanAll(func(r *record, _ int64) bool {
		ops = append(ops, *r.operator())
		return true
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

// ChangePassword rewrites the operator's record in place with a new
// password. The current password must match; a wrong current password and
// an unknown operator are reported identically.
func (m *Manager) ChangePassword(username string, current, next int) error {
	rec, offset, err := m.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Username[:]) == username && int(r.Password) == current
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrAuthFailed
	}
	if err != nil {
		return err
	}

	rec.Password = int32(next)
	if err := m.store.UpdateAt(offset, rec); err != nil {
		return err
	}
	log.Printf("INFO: identity: password changed for %q", username)
	return nil
}
