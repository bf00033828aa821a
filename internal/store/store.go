// Package store provides fixed-record flat-file persistence. Each entity
// kind lives in its own file: a raw concatenation of fixed-size records
// with no header and no record count, read and written little-endian via
// encoding/binary. End-of-file is the only length signal.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	// ErrNotFound indicates no record satisfied the predicate.
	ErrNotFound = errors.New("store: record not found")

	// ErrIntegrity indicates a rebuild-and-replace sequence partially
	// failed. The rebuilt data may live in the temporary file while the
	// original is stale or already removed; this implies possible data
	// loss and must never be treated as a plain IO error.
	ErrIntegrity = errors.New("store: file replace left inconsistent state")
)

// Store persists fixed-size records of type R in a single flat file.
// R must have a fixed binary size (fixed-length arrays and sized integers
// only). A coarse mutex guards every operation; the file must not be
// modified by another process while a scan or rebuild is in progress.
type Store[R any] struct {
	path string
	size int64
	mu   sync.Mutex
}

// New creates a store for records of type R backed by path. The file is
// not created until the first append; a missing file scans as empty.
func New[R any](path string) (*Store[R], error) {
	var zero R
	size := binary.Size(&zero)
	if size <= 0 {
		return nil, fmt.Errorf("store: record type %T has no fixed binary size", zero)
	}
	return &Store[R]{path: path, size: int64(size)}, nil
}

// Path returns the backing file path.
func (s *Store[R]) Path() string { return s.path }

// RecordSize returns the fixed on-disk size of one record in bytes.
func (s *Store[R]) RecordSize() int64 { return s.size }

// Append writes exactly one record at the end of the file, creating the
// file if it does not exist yet.
func (s *Store[R]) Append(rec *R) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("store: open %s for append: %w", s.path, err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, rec); err != nil {
		return fmt.Errorf("store: append to %s: %w", s.path, err)
	}
	return nil
}

// ScanAll reads every record in file order (insertion order) and calls fn
// with the record and its byte offset. Returning false from fn stops the
// scan early. A missing file yields zero records and a nil error: "no
// records yet" is a normal condition, not an exceptional one.
func (s *Store[R]) ScanAll(fn func(rec *R, offset int64) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanLocked(fn)
}

func (s *Store[R]) scanLocked(fn func(rec *R, offset int64) bool) error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: open %s: %w", s.path, err)
	}
	defer f.Close()

	offset := int64(0)
	for {
		rec := new(R)
		err := binary.Read(f, binary.LittleEndian, rec)
		if err == io.EOF {
			return nil
		}
		if err == io.ErrUnexpectedEOF {
			return fmt.Errorf("store: %s has a truncated record at offset %d: %w", s.path, offset, err)
		}
		if err != nil {
			return fmt.Errorf("store: read %s at offset %d: %w", s.path, offset, err)
		}
		if !fn(rec, offset) {
			return nil
		}
		offset += s.size
	}
}

// FindFirst returns the first record in file order satisfying pred, along
// with its byte offset for use with UpdateAt. Returns ErrNotFound when no
// record matches (including when the file does not exist).
func (s *Store[R]) FindFirst(pred func(*R) bool) (*R, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *R
	var foundOff int64
	err := s.scanLocked(func(rec *R, offset int64) bool {
		if pred(rec) {
			found = rec
			foundOff = offset
			return false
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	if found == nil {
		return nil, 0, ErrNotFound
	}
	return found, foundOff, nil
}

// UpdateAt overwrites exactly one record at the given byte offset. The
// offset must come from a FindFirst or ScanAll over the same unmodified
// file; no isolation is provided against external modification.
func (s *Store[R]) UpdateAt(offset int64, rec *R) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("store: open %s for update: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("store: seek %s to %d: %w", s.path, offset, err)
	}
	if err := binary.Write(f, binary.LittleEndian, rec); err != nil {
		return fmt.Errorf("store: update %s at %d: %w", s.path, offset, err)
	}
	return nil
}

// RebuildExcluding rewrites the file without the records matching pred and
// reports how many were dropped. This is the only deletion mechanism: the
// whole file is copied to a temporary sibling, the original removed, and
// the temporary renamed into place. Failures after the copy wrap
// ErrIntegrity so callers can surface the possible-data-loss condition.
func (s *Store[R]) RebuildExcluding(pred func(*R) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return 0, nil
	}

	tmpPath := s.path + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("store: create %s: %w", tmpPath, err)
	}

	removed := 0
	var writeErr error
	scanErr := s.scanLocked(func(rec *R, offset int64) bool {
		if pred(rec) {
			removed++
			return true
		}
		if err := binary.Write(tmp, binary.LittleEndian, rec); err != nil {
			writeErr = fmt.Errorf("store: write %s: %w", tmpPath, err)
			return false
		}
		return true
	})
	closeErr := tmp.Close()
	if scanErr == nil {
		scanErr = writeErr
	}
	if scanErr != nil {
		os.Remove(tmpPath)
		return 0, scanErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("store: close %s: %w", tmpPath, closeErr)
	}

	if err := os.Remove(s.path); err != nil {
		return removed, fmt.Errorf("store: remove %s failed (%v); rebuilt data preserved at %s: %w",
			s.path, err, tmpPath, ErrIntegrity)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return removed, fmt.Errorf("store: rename %s to %s failed (%v); original already removed: %w",
			tmpPath, s.path, err, ErrIntegrity)
	}
	return removed, nil
}
