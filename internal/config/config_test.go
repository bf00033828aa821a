package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load on missing file = %+v, want defaults", cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{"debug": true}`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.DataPath != Default().DataPath {
		t.Errorf("DataPath = %q, want default %q", cfg.DataPath, Default().DataPath)
	}
	if cfg.Backup.Schedule != Default().Backup.Schedule {
		t.Errorf("Backup.Schedule = %q, want default", cfg.Backup.Schedule)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load on malformed file succeeded, want error")
	}
}

func TestLoadEnabledBackupGetsScheduleDefault(t *testing.T) {
	dir := t.TempDir()
	raw := `{"backup": {"enabled": true, "schedule": "", "dir": "snap"}}`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(raw), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backup.Schedule != Default().Backup.Schedule {
		t.Errorf("Backup.Schedule = %q, want default", cfg.Backup.Schedule)
	}
	if cfg.Backup.Dir != "snap" {
		t.Errorf("Backup.Dir = %q, want %q", cfg.Backup.Dir, "snap")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	want := Config{
		DataPath: "/var/lib/warroom",
		Debug:    true,
		Backup:   BackupConfig{Enabled: true, Schedule: "30 2 * * *", Dir: "snapshots"},
	}
	if err := Save(dir, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
