// Package block orchestrates the lifecycle of report blocks: creation,
// listing, opening, in-place editing and delete-via-rebuild. Content is
// ciphered at rest and decrypted only transiently for display after a
// correct-key open.
package block

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/stlalpha/warroom/internal/access"
	"github.com/stlalpha/warroom/internal/asset"
	"github.com/stlalpha/warroom/internal/cipher"
	"github.com/stlalpha/warroom/internal/group"
	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/store"
)

// Field capacities, including the NUL terminator byte.
const (
	MaxTitle   = 100
	MaxContent = 1000
)

// FileName is the block store file within the data directory.
const FileName = "blocks.dat"

// NoValue is the sentinel stored in type-specific fields that do not
// apply to a block's type.
const NoValue = "N/A"

var (
	ErrBlockNotFound  = errors.New("block: block not found")
	ErrDuplicateTitle = errors.New("block: a block with this title already exists for this owner")
	ErrTitleTooLong   = errors.New("block: title too long")
	ErrContentTooLong = errors.New("block: content too long")
	ErrAccessDenied   = errors.New("block: access denied")

	// ErrBadKey means the block exists and is accessible but the supplied
	// key is wrong. Callers must keep this distinct from ErrBlockNotFound.
	ErrBadKey = errors.New("block: incorrect key")
)

// record is the fixed on-disk layout of one block. Content holds the
// ciphered form; it is NUL-padded and trimmed at the first NUL on read, so
// a key that shifts a content byte to zero truncates the stored
// ciphertext there. Long-standing behavior, kept as is.
type record struct {
	Owner         [identity.MaxUsername]byte
	Title         [MaxTitle]byte
	Content       [MaxContent]byte
	Key           int32
	Type          int32
	MinAccessRank int32
	LinkedAssetID [asset.IDLen]byte
	GroupDest     [group.MaxName]byte
}

// Block is the in-memory form of a block record. Content is ciphertext
// except in the return value of Open, which decrypts transiently.
type Block struct {
	Owner         string
	Title         string
	Content       string
	Key           int
	Type          access.Type
	MinAccessRank identity.Rank
	LinkedAssetID string
	GroupDest     string
}

func (r *record) block() *Block {
	return &Block{
		Owner:         store.FieldString(r.Owner[:]),
		Title:         store.FieldString(r.Title[:]),
		Content:       store.FieldString(r.Content[:]),
		Key:           int(r.Key),
		Type:          access.Type(r.Type),
		MinAccessRank: identity.Rank(r.MinAccessRank),
		LinkedAssetID: store.FieldString(r.LinkedAssetID[:]),
		GroupDest:     store.FieldString(r.GroupDest[:]),
	}
}

// Service provides block lifecycle operations.
type Service struct {
	store *store.Store[record]
	eval  *access.Evaluator
}

// NewService creates a block service rooted at dataPath, deciding
// visibility with eval.
func NewService(dataPath string, eval *access.Evaluator) (*Service, error) {
	st, err := store.New[record](filepath.Join(dataPath, FileName))
	if err != nil {
		return nil, err
	}
	return &Service{store: st, eval: eval}, nil
}

// CreateParams carries the already-validated inputs for Create. The
// option fields are 1-based menu selections; the three type-specific
// fields are consulted only for the matching type.
type CreateParams struct {
	Owner   string
	Title   string
	Content string
	Key     int

	TypeOption    int
	MinRankOption int    // Classified only
	LinkedAssetID string // Asset Telemetry only
	GroupDest     string // Group Message only
}

// Create encrypts the content with the supplied key and appends a new
// block. The (owner, title) pair must be unique; title and content
// overflow are hard rejections, while type-specific field overflow
// degrades to the N/A sentinel with a warning.
func (s *Service) Create(p CreateParams) (*Block, error) {
	if !store.Fits(p.Title, MaxTitle) {
		return nil, fmt.Errorf("%w: max %d characters", ErrTitleTooLong, MaxTitle-1)
	}
	if !store.Fits(p.Content, MaxContent) {
		return nil, fmt.Errorf("%w: max %d characters", ErrContentTooLong, MaxContent-1)
	}

	_, _, err := s.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Owner[:]) == p.Owner && store.FieldString(r.Title[:]) == p.Title
	})
	if err == nil {
		return nil, ErrDuplicateTitle
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	typ, ok := access.TypeFromOption(p.TypeOption)
	if !ok {
		log.Printf("WARN: block: invalid type option %d, defaulting to %s", p.TypeOption, access.TypePublic)
	}

	rec := &record{Key: int32(p.Key), Type: int32(typ), MinAccessRank: int32(identity.RankRecruit)}
	store.SetField(rec.Owner[:], p.Owner)
	store.SetField(rec.Title[:], p.Title)
	store.SetField(rec.LinkedAssetID[:], NoValue)
	store.SetField(rec.GroupDest[:], NoValue)

	switch typ {
	case access.TypeClassified:
		minRank, ok := identity.RankFromOption(p.MinRankOption)
		if !ok {
			minRank = identity.RankOfficer
			log.Printf("WARN: block: invalid minimum rank option %d, defaulting to %s",
				p.MinRankOption, minRank)
		}
		rec.MinAccessRank = int32(minRank)
	case access.TypeAssetTelemetry:
		id := p.LinkedAssetID
		if !store.Fits(id, asset.IDLen) {
			log.Printf("WARN: block: linked asset id exceeds %d characters, storing %s",
				asset.IDLen-1, NoValue)
			id = NoValue
		}
		store.SetField(rec.LinkedAssetID[:], id)
	case access.TypeGroupMessage:
		dest := p.GroupDest
		if !store.Fits(dest, group.MaxName) {
			log.Printf("WARN: block: destination group name exceeds %d characters, storing %s",
				group.MaxName-1, NoValue)
			dest = NoValue
		}
		store.SetField(rec.GroupDest[:], dest)
	}

	store.SetField(rec.Content[:], cipher.Encode(p.Content, p.Key))
	if err := s.store.Append(rec); err != nil {
		return nil, err
	}
	log.Printf("INFO: block: %q (%s) created by %q", p.Title, typ, p.Owner)
	return rec.block(), nil
}

// ListEntry is one visible block in a listing. Content is never included.
type ListEntry struct {
	Title      string
	Owner      string
	Type       access.Type
	Annotation string // min rank, linked asset or destination group
}

// List returns the blocks visible to the requester in store order, plus
// the total number of records scanned so callers can distinguish an empty
// store from "none visible to you".
func (s *Service) List(req access.Requester) ([]ListEntry, int, error) {
	var entries []ListEntry
	scanned := 0
	err := s.store.ScanAll(func(r *record, _ int64) bool {
		scanned++
		b := r.block()
		if !s.eval.CanView(b.Owner, b.Type, b.MinAccessRank, b.GroupDest, req) {
			return true
		}
		entry := ListEntry{Title: b.Title, Owner: b.Owner, Type: b.Type}
		switch b.Type {
		case access.TypeClassified:
			entry.Annotation = "Min. Rank: " + b.MinAccessRank.String()
		case access.TypeAssetTelemetry:
			if b.LinkedAssetID != NoValue {
				entry.Annotation = "Asset: " + b.LinkedAssetID
			}
		case access.TypeGroupMessage:
			if b.GroupDest != NoValue {
				entry.Annotation = "Group: " + b.GroupDest
			}
		}
		entries = append(entries, entry)
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, scanned, nil
}

// Open locates a block by title alone -- the first match in file order --
// and returns it with decrypted content when the requester may view it
// and the key matches the stored key. The three failure modes stay
// distinct: ErrBlockNotFound, ErrAccessDenied and ErrBadKey. A wrong key
// never discloses content but does confirm the block exists.
func (s *Service) Open(req access.Requester, title string, key int) (*Block, error) {
	rec, _, err := s.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Title[:]) == title
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}

	b := rec.block()
	if !s.eval.CanView(b.Owner, b.Type, b.MinAccessRank, b.GroupDest, req) {
		return nil, ErrAccessDenied
	}
	if b.Key != key {
		return nil, ErrBadKey
	}
	b.Content = cipher.Decode(b.Content, key)
	return b, nil
}

// EditParams carries the inputs for Edit. Empty NewTitle or NewContent
// keeps the current value; NewKey always becomes the block's key (pass
// the current key to keep it).
type EditParams struct {
	Owner      string
	Title      string
	CurrentKey int

	NewTitle   string
	NewContent string
	NewKey     int
}

// Edit unlocks the block identified by (owner, title) with the current
// key, applies the requested changes and rewrites the record in place at
// its original offset. Only the owner may edit. A new title colliding
// with another of the owner's blocks keeps the old title with a warning
// rather than failing the whole edit.
func (s *Service) Edit(p EditParams) (*Block, error) {
	rec, offset, err := s.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Owner[:]) == p.Owner && store.FieldString(r.Title[:]) == p.Title
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	if int(rec.Key) != p.CurrentKey {
		return nil, ErrBadKey
	}

	content := cipher.Decode(store.FieldString(rec.Content[:]), p.CurrentKey)

	if p.NewTitle != "" && p.NewTitle != p.Title {
		switch {
		case !store.Fits(p.NewTitle, MaxTitle):
			log.Printf("WARN: block: new title exceeds %d characters, keeping %q", MaxTitle-1, p.Title)
		case s.titleTaken(p.Owner, p.NewTitle):
			log.Printf("WARN: block: %q already has a block titled %q, keeping %q",
				p.Owner, p.NewTitle, p.Title)
		default:
			store.SetField(rec.Title[:], p.NewTitle)
		}
	}

	if p.NewContent != "" {
		if !store.Fits(p.NewContent, MaxContent) {
			log.Printf("WARN: block: new content exceeds %d characters, keeping current content", MaxContent-1)
		} else {
			content = p.NewContent
		}
	}

	rec.Key = int32(p.NewKey)
	store.SetField(rec.Content[:], cipher.Encode(content, p.NewKey))
	if err := s.store.UpdateAt(offset, rec); err != nil {
		return nil, err
	}
	b := rec.block()
	log.Printf("INFO: block: %q updated by %q", b.Title, p.Owner)
	return b, nil
}

func (s *Service) titleTaken(owner, title string) bool {
	_, _, err := s.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Owner[:]) == owner && store.FieldString(r.Title[:]) == title
	})
	return err == nil
}

// Delete removes the block identified by (owner, title) after verifying
// the key, rebuilding the store file without it. Every other record is
// preserved, including blocks sharing the title under a different owner.
func (s *Service) Delete(owner, title string, key int) error {
	rec, _, err := s.store.FindFirst(func(r *record) bool {
		return store.FieldString(r.Owner[:]) == owner && store.FieldString(r.Title[:]) == title
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrBlockNotFound
	}
	if err != nil {
		return err
	}
	if int(rec.Key) != key {
		return ErrBadKey
	}

	removed, err := s.store.RebuildExcluding(func(r *record) bool {
		return store.FieldString(r.Owner[:]) == owner &&
			store.FieldString(r.Title[:]) == title &&
			int(r.Key) == key
	})
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrBlockNotFound
	}
	log.Printf("INFO: block: %q deleted by %q", title, owner)
	return nil
}
