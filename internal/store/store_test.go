package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type testRec struct {
	Name  [16]byte
	Value int32
}

func newTestStore(t *testing.T) *Store[testRec] {
	t.Helper()
	s, err := New[testRec](filepath.Join(t.TempDir(), "test.dat"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func rec(name string, value int32) *testRec {
	r := &testRec{Value: value}
	SetField(r.Name[:], name)
	return r
}

func names(s *Store[testRec]) []string {
	var out []string
	s.ScanAll(func(r *testRec, _ int64) bool {
		out = append(out, FieldString(r.Name[:]))
		return true
	})
	return out
}

func TestScanMissingFileYieldsNothing(t *testing.T) {
	s := newTestStore(t)
	calls := 0
	if err := s.ScanAll(func(*testRec, int64) bool { calls++; return true }); err != nil {
		t.Fatalf("ScanAll on missing file: %v", err)
	}
	if calls != 0 {
		t.Errorf("scan of missing file visited %d records, want 0", calls)
	}
}

func TestAppendScanPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	for i, n := range []string{"alpha", "bravo", "charlie"} {
		if err := s.Append(rec(n, int32(i))); err != nil {
			t.Fatalf("Append %s: %v", n, err)
		}
	}

	got := names(s)
	want := []string{"alpha", "bravo", "charlie"}
	if len(got) != len(want) {
		t.Fatalf("scanned %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindFirstReturnsOffset(t *testing.T) {
	s := newTestStore(t)
	s.Append(rec("alpha", 1))
	s.Append(rec("bravo", 2))
	s.Append(rec("bravo", 3))

	r, off, err := s.FindFirst(func(r *testRec) bool {
		return FieldString(r.Name[:]) == "bravo"
	})
	if err != nil {
		t.Fatalf("FindFirst: %v", err)
	}
	if r.Value != 2 {
		t.Errorf("found Value = %d, want 2 (first match in file order)", r.Value)
	}
	if off != s.RecordSize() {
		t.Errorf("offset = %d, want %d", off, s.RecordSize())
	}

	_, _, err = s.FindFirst(func(r *testRec) bool { return false })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FindFirst with no match = %v, want ErrNotFound", err)
	}
}

func TestUpdateAtPreservesNeighborsAndLength(t *testing.T) {
	s := newTestStore(t)
	s.Append(rec("alpha", 1))
	s.Append(rec("bravo", 2))
	s.Append(rec("charlie", 3))

	before, _ := os.Stat(s.Path())

	_, off, err := s.FindFirst(func(r *testRec) bool {
		return FieldString(r.Name[:]) == "bravo"
	})
	if err != nil {
		t.Fatalf("FindFirst: %v", err)
	}
	if err := s.UpdateAt(off, rec("bravo", 99)); err != nil {
		t.Fatalf("UpdateAt: %v", err)
	}

	after, _ := os.Stat(s.Path())
	if before.Size() != after.Size() {
		t.Errorf("file size changed from %d to %d", before.Size(), after.Size())
	}

	var values []int32
	s.ScanAll(func(r *testRec, _ int64) bool {
		values = append(values, r.Value)
		return true
	})
	want := []int32{1, 99, 3}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("record %d Value = %d, want %d", i, values[i], want[i])
		}
	}
}

func TestRebuildExcludingRemovesExactlyMatched(t *testing.T) {
	s := newTestStore(t)
	s.Append(rec("alpha", 1))
	s.Append(rec("bravo", 2))
	s.Append(rec("bravo", 3)) // same name, different value: must survive
	s.Append(rec("charlie", 4))

	removed, err := s.RebuildExcluding(func(r *testRec) bool {
		return FieldString(r.Name[:]) == "bravo" && r.Value == 2
	})
	if err != nil {
		t.Fatalf("RebuildExcluding: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	got := names(s)
	want := []string{"alpha", "bravo", "charlie"}
	if len(got) != len(want) {
		t.Fatalf("after rebuild scanned %d records, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRebuildExcludingMissingFile(t *testing.T) {
	s := newTestStore(t)
	removed, err := s.RebuildExcluding(func(*testRec) bool { return true })
	if err != nil {
		t.Fatalf("RebuildExcluding on missing file: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestSetFieldTruncatesAndPads(t *testing.T) {
	var f [8]byte
	SetField(f[:], "0123456789")
	if got := FieldString(f[:]); got != "0123456" {
		t.Errorf("truncated field = %q, want %q", got, "0123456")
	}
	if f[7] != 0 {
		t.Error("final byte must be NUL")
	}

	SetField(f[:], "ab")
	if got := FieldString(f[:]); got != "ab" {
		t.Errorf("field = %q, want %q", got, "ab")
	}
	for i := 2; i < 8; i++ {
		if f[i] != 0 {
			t.Errorf("byte %d = %x, want NUL padding", i, f[i])
		}
	}
}

func TestFits(t *testing.T) {
	if !Fits("abc", 4) {
		t.Error("3 bytes should fit in capacity 4")
	}
	if Fits("abcd", 4) {
		t.Error("4 bytes must not fit in capacity 4 (no room for terminator)")
	}
}
