package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stlalpha/warroom/internal/config"
	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/message"
)

func TestSnapshotCopiesPresentFiles(t *testing.T) {
	dataDir := t.TempDir()
	backupDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dataDir, identity.FileName), []byte("operators"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, message.FileName), []byte("messages"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewBackupScheduler(config.BackupConfig{Enabled: true, Dir: backupDir}, dataDir)
	if err := s.Snapshot(); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	stamps, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(stamps) != 1 {
		t.Fatalf("backup dir has %d entries, want 1 timestamped dir", len(stamps))
	}
	snapDir := filepath.Join(backupDir, stamps[0].Name())

	got, err := os.ReadFile(filepath.Join(snapDir, identity.FileName))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "operators" {
		t.Errorf("copied %s = %q", identity.FileName, got)
	}

	// Absent stores are skipped, not errors.
	entries, err := os.ReadDir(snapDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("snapshot has %d files, want 2", len(entries))
	}
}

func TestSnapshotEmptyDataDir(t *testing.T) {
	s := NewBackupScheduler(config.BackupConfig{Enabled: true, Dir: t.TempDir()}, t.TempDir())
	if err := s.Snapshot(); err != nil {
		t.Fatalf("Snapshot with no data files: %v", err)
	}
}

func TestRunBackupRecordsOutcome(t *testing.T) {
	s := NewBackupScheduler(config.BackupConfig{Enabled: true, Dir: t.TempDir()}, t.TempDir())

	if last, _ := s.LastRun(); !last.IsZero() {
		t.Error("LastRun before any backup is non-zero")
	}

	s.runBackup()

	last, err := s.LastRun()
	if err != nil {
		t.Errorf("LastRun err = %v", err)
	}
	if last.IsZero() {
		t.Error("LastRun not recorded after backup")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewBackupScheduler(config.BackupConfig{
		Enabled:  true,
		Schedule: "not a schedule",
		Dir:      t.TempDir(),
	}, t.TempDir())
	if err := s.Start(); err == nil {
		s.Stop()
		t.Error("Start with invalid schedule succeeded, want error")
	}
}

func TestStartDisabledIsNoop(t *testing.T) {
	s := NewBackupScheduler(config.BackupConfig{Enabled: false}, t.TempDir())
	if err := s.Start(); err != nil {
		t.Fatalf("Start disabled: %v", err)
	}
	s.Stop()
}
