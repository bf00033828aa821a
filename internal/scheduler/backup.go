// Package scheduler runs the periodic backup of the flat data files on a
// cron schedule.
package scheduler

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stlalpha/warroom/internal/asset"
	"github.com/stlalpha/warroom/internal/block"
	"github.com/stlalpha/warroom/internal/config"
	"github.com/stlalpha/warroom/internal/group"
	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/message"
)

// dataFiles are the flat files a backup snapshot copies. Missing files
// are skipped; an empty store has nothing to back up.
var dataFiles = []string{
	identity.FileName,
	block.FileName,
	asset.FileName,
	asset.CounterFileName,
	message.FileName,
	group.FileName,
}

// BackupScheduler snapshots the data directory on a cron schedule.
type BackupScheduler struct {
	cfg      config.BackupConfig
	dataPath string
	cron     *cron.Cron

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// NewBackupScheduler creates a scheduler for the given data directory.
func NewBackupScheduler(cfg config.BackupConfig, dataPath string) *BackupScheduler {
	return &BackupScheduler{cfg: cfg, dataPath: dataPath}
}

// Start registers the backup job and begins the cron loop. Disabled
// configuration is not an error; the scheduler simply stays idle.
func (s *BackupScheduler) Start() error {
	if !s.cfg.Enabled {
		log.Printf("INFO: Backups disabled, scheduler not started")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runBackup); err != nil {
		return fmt.Errorf("failed to schedule backup %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	log.Printf("INFO: Backup scheduler running: %s -> %s", s.cfg.Schedule, s.cfg.Dir)
	return nil
}

// Stop stops the cron loop and waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	log.Printf("INFO: Backup scheduler stopped")
}

// LastRun reports the completion time and outcome of the most recent
// backup. The zero time means no backup has run yet.
func (s *BackupScheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *BackupScheduler) runBackup() {
	err := s.Snapshot()
	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()
	if err != nil {
		log.Printf("ERROR: Backup failed: %v", err)
	}
}

// Snapshot copies every present data file into a timestamped directory
// under the configured backup dir. It is exported so an operator can
// trigger a backup on demand.
func (s *BackupScheduler) Snapshot() error {
	stamp := time.Now().Format("20060102-150405")
	destDir := filepath.Join(s.cfg.Dir, stamp)
	if err := os.MkdirAll(destDir, 0750); err != nil {
		return fmt.Errorf("failed to create backup directory %s: %w", destDir, err)
	}

	copied := 0
	for _, name := range dataFiles {
		src := filepath.Join(s.dataPath, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(destDir, name)); err != nil {
			return err
		}
		copied++
	}
	log.Printf("INFO: Backup complete: %d file(s) -> %s", copied, destDir)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
