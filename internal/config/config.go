// Package config loads and saves the terminal configuration from
// config.json. A missing file yields defaults; a malformed one is an
// error so a typo never silently reverts settings.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileName is the configuration file within the config directory.
const FileName = "config.json"

// BackupConfig controls the scheduled snapshot of the data files.
type BackupConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"` // cron syntax
	Dir      string `json:"dir"`
}

// Config holds the terminal settings.
type Config struct {
	DataPath string       `json:"dataPath"`
	Debug    bool         `json:"debug"`
	Backup   BackupConfig `json:"backup"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		DataPath: "data",
		Debug:    false,
		Backup: BackupConfig{
			Enabled:  false,
			Schedule: "0 3 * * *",
			Dir:      "backups",
		},
	}
}

// Load reads config.json from configPath. A missing file returns the
// defaults without error.
func Load(configPath string) (Config, error) {
	filePath := filepath.Join(configPath, FileName)

	cfg := Default()
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("WARN: %s not found at %s. Using default settings.", FileName, filePath)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	// Unmarshal over the defaults so absent keys keep their default value.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config JSON from %s: %w", filePath, err)
	}

	if cfg.Backup.Enabled && cfg.Backup.Schedule == "" {
		log.Printf("WARN: backup enabled with empty schedule, using %q", Default().Backup.Schedule)
		cfg.Backup.Schedule = Default().Backup.Schedule
	}

	log.Printf("INFO: Loaded configuration from %s", filePath)
	return cfg, nil
}

// Save writes cfg to config.json under configPath, creating the
// directory if needed.
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(configPath, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configPath, err)
	}
	filePath := filepath.Join(configPath, FileName)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return nil
}
