// Package asset manages the aerospace asset inventory. Asset identifiers
// are generated from a process-wide monotonic counter that is flushed to
// its own file on every creation, so identifiers stay unique across
// restarts.
package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/logging"
	"github.com/stlalpha/warroom/internal/store"
)

// Field capacities, including the NUL terminator byte.
const (
	IDLen       = 10
	MaxName     = 50
	MaxLocation = 50
)

// File names within the data directory.
const (
	FileName        = "assets.dat"
	CounterFileName = "asset_counter.dat"
)

var (
	ErrNameTooLong = errors.New("asset: asset name too long")

	// ErrCounterPersist indicates the counter file could not be flushed.
	// The in-memory counter still advances, so subsequent identifiers in
	// this process remain unique, but a restart may reissue them.
	ErrCounterPersist = errors.New("asset: could not persist asset counter")
)

// Type classifies an aerospace asset.
type Type int32

const (
	TypeSpacecraft Type = iota
	TypeSatellite
	TypeDrone
	TypeBase

	typeCount
)

// NumTypes is the number of defined asset types, for menu rendering.
const NumTypes = int(typeCount)

func (t Type) String() string {
	switch t {
	case TypeSpacecraft:
		return "Spacecraft"
	case TypeSatellite:
		return "Satellite"
	case TypeDrone:
		return "Drone"
	case TypeBase:
		return "Base"
	default:
		return "Unknown"
	}
}

// TypeFromOption maps a 1-based menu selection to a Type. Out-of-range
// selections report ok=false; callers default those to Spacecraft.
func TypeFromOption(option int) (Type, bool) {
	if option < 1 || option > NumTypes {
		return TypeSpacecraft, false
	}
	return Type(option - 1), true
}

// Status is an asset's operational status.
type Status int32

const (
	StatusOperational Status = iota
	StatusDamaged
	StatusMaintenance
	StatusLost

	statusCount
)

// NumStatuses is the number of defined statuses, for menu rendering.
const NumStatuses = int(statusCount)

func (s Status) String() string {
	switch s {
	case StatusOperational:
		return "Operational"
	case StatusDamaged:
		return "Damaged"
	case StatusMaintenance:
		return "In Maintenance"
	case StatusLost:
		return "Lost"
	default:
		return "Unknown"
	}
}

// StatusFromOption maps a 1-based menu selection to a Status.
// Out-of-range selections report ok=false; callers default those to
// Operational.
func StatusFromOption(option int) (Status, bool) {
	if option < 1 || option > NumStatuses {
		return StatusOperational, false
	}
	return Status(option - 1), true
}

// record is the fixed on-disk layout of one asset.
type record struct {
	ID        [IDLen]byte
	Name      [MaxName]byte
	Type      int32
	Status    int32
	Location  [MaxLocation]byte
	OwnerUnit [identity.MaxUnit]byte
}

// Asset is the in-memory form of an asset record.
type Asset struct {
	ID        string
	Name      string
	Type      Type
	Status    Status
	Location  string
	OwnerUnit string
}

func (r *record) asset() *Asset {
	return &Asset{
		ID:        store.FieldString(r.ID[:]),
		Name:      store.FieldString(r.Name[:]),
		Type:      Type(r.Type),
		Status:    Status(r.Status),
		Location:  store.FieldString(r.Location[:]),
		OwnerUnit: store.FieldString(r.OwnerUnit[:]),
	}
}

// Registry provides asset operations over the flat store plus the
// persisted identifier counter.
type Registry struct {
	store       *store.Store[record]
	counterPath string

	mu      sync.Mutex
	counter int32
}

// NewRegistry creates an asset registry rooted at dataPath, loading the
// persisted counter. A missing counter file starts the sequence at zero.
func NewRegistry(dataPath string) (*Registry, error) {
	st, err := store.New[record](filepath.Join(dataPath, FileName))
	if err != nil {
		return nil, err
	}
	r := &Registry{store: st, counterPath: filepath.Join(dataPath, CounterFileName)}

	data, err := os.ReadFile(r.counterPath)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("asset: read counter %s: %w", r.counterPath, err)
	}
	if len(data) < 4 {
		log.Printf("WARN: asset: counter file %s is truncated, restarting sequence", r.counterPath)
		return r, nil
	}
	r.counter = int32(binary.LittleEndian.Uint32(data))
	logging.Debug("asset: loaded counter %d from %s", r.counter, r.counterPath)
	return r, nil
}

// generateID increments the counter, flushes it, and formats the new
// identifier. A flush failure is returned alongside the identifier; the
// in-memory counter has already advanced.
func (r *Registry) generateID() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	id := fmt.Sprintf("ASSET%03d", r.counter)

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(r.counter))
	if err := os.WriteFile(r.counterPath, buf[:], 0644); err != nil {
		return id, fmt.Errorf("%w: %v", ErrCounterPersist, err)
	}
	return id, nil
}

// Create assigns a fresh identifier and appends the asset record. The
// asset is owned by ownerUnit; visibility is always unit-scoped. An
// oversized location degrades to "Unknown" with a warning; out-of-range
// type and status selections degrade to their defaults. When the counter
// flush fails the asset is still created and returned together with an
// error wrapping ErrCounterPersist.
func (r *Registry) Create(name string, typeOption, statusOption int, location, ownerUnit string) (*Asset, error) {
	if !store.Fits(name, MaxName) {
		return nil, fmt.Errorf("%w: max %d characters", ErrNameTooLong, MaxName-1)
	}

	typ, ok := TypeFromOption(typeOption)
	if !ok {
		log.Printf("WARN: asset: invalid type option %d, defaulting to %s", typeOption, TypeSpacecraft)
	}
	status, ok := StatusFromOption(statusOption)
	if !ok {
		log.Printf("WARN: asset: invalid status option %d, defaulting to %s", statusOption, StatusOperational)
	}
	if !store.Fits(location, MaxLocation) {
		log.Printf("WARN: asset: location exceeds %d characters, storing Unknown", MaxLocation-1)
		location = "Unknown"
	}

	id, idErr := r.generateID()
	if idErr != nil {
		log.Printf("ERROR: asset: %v", idErr)
	}

	rec := &record{Type: int32(typ), Status: int32(status)}
	store.SetField(rec.ID[:], id)
	store.SetField(rec.Name[:], name)
	store.SetField(rec.Location[:], location)
	store.SetField(rec.OwnerUnit[:], ownerUnit)
	if err := r.store.Append(rec); err != nil {
		return nil, err
	}

	log.Printf("INFO: asset: created %s %q (%s, unit %s)", id, name, typ, ownerUnit)
	return rec.asset(), idErr
}

// ListForUnit returns every asset whose owner unit matches exactly, in
// file order. There is no per-operator ownership; the unit is the only
// visibility scope.
func (r *Registry) ListForUnit(unit string) ([]Asset, error) {
	var assets []Asset
	err := r.store.ScanAll(func(rec *record, _ int64) bool {
		if store.FieldString(rec.OwnerUnit[:]) == unit {
			assets = append(assets, *rec.asset())
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}
