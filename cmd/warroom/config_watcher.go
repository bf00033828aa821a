package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stlalpha/warroom/internal/config"
	"github.com/stlalpha/warroom/internal/logging"
)

// ConfigWatcher watches the configuration directory and hot-reloads
// config.json. Only the debug flag takes effect live; data path and
// backup changes need a restart.
type ConfigWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	watcherDone chan bool
	configPath  string
	cfg         *config.Config
	cfgMu       *sync.RWMutex
}

// NewConfigWatcher creates a watcher over configPath that reloads into
// cfg under cfgMu.
func NewConfigWatcher(configPath string, cfg *config.Config, cfgMu *sync.RWMutex) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		watcher:     watcher,
		watcherDone: make(chan bool),
		configPath:  configPath,
		cfg:         cfg,
		cfgMu:       cfgMu,
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", configPath, err)
	}
	log.Printf("INFO: Watching %s for config changes (auto-reload enabled)", configPath)

	go cw.watchLoop(watcher)
	return cw, nil
}

// Stop stops the configuration file watcher.
func (cw *ConfigWatcher) Stop() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.watcher == nil {
		return
	}

	select {
	case <-cw.watcherDone:
	default:
		close(cw.watcherDone)
	}

	cw.watcher.Close()
	cw.watcher = nil
	log.Printf("INFO: Configuration file watcher stopped")
}

func (cw *ConfigWatcher) watchLoop(w *fsnotify.Watcher) {
	// Debounce to avoid reloading on rapid successive writes.
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					cw.handleConfigChange(event.Name)
				})
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("ERROR: Config file watcher error: %v", err)

		case <-cw.watcherDone:
			log.Printf("INFO: Stopping config file watcher")
			return
		}
	}
}

func (cw *ConfigWatcher) handleConfigChange(path string) {
	if !strings.EqualFold(filepath.Base(path), config.FileName) {
		logging.Debug("Ignoring change to %s", filepath.Base(path))
		return
	}

	log.Printf("INFO: Reloading %s...", config.FileName)
	newCfg, err := config.Load(cw.configPath)
	if err != nil {
		log.Printf("ERROR: Failed to reload %s: %v", config.FileName, err)
		return
	}

	cw.cfgMu.Lock()
	oldCfg := *cw.cfg
	*cw.cfg = newCfg
	cw.cfgMu.Unlock()

	logging.DebugEnabled = newCfg.Debug
	log.Printf("INFO: %s reloaded successfully (debug=%t)", config.FileName, newCfg.Debug)

	if oldCfg.DataPath != newCfg.DataPath || oldCfg.Backup != newCfg.Backup {
		log.Printf("WARN: Data path and backup changes require a full restart")
	}
}
