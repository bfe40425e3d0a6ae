// Package config builds the immutable runtime settings from the environment.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/logging"
	"github.com/illarion/passvault/internal/storage"
	"github.com/illarion/passvault/internal/vaultfile"
)

// Environment variables
const (
	EnvFile           = "PASSVAULT_FILE"
	EnvLog            = "PASSVAULT_LOG"
	EnvSyncURL        = "PASSVAULT_SYNC_URL"
	EnvDriveCreds     = "PASSVAULT_DRIVE_CREDENTIALS"
	EnvDriveToken     = "PASSVAULT_DRIVE_TOKEN"
	EnvIdleTimeout    = "PASSVAULT_IDLE_TIMEOUT"
	EnvClipboardClear = "PASSVAULT_CLIPBOARD_CLEAR"
	EnvHistoryKeep    = "PASSVAULT_HISTORY_KEEP"
)

// Defaults
const (
	DefaultVaultFile      = "vault.bin"
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultClipboardClear = 20 * time.Second
	DefaultHistoryKeep    = 20
)

// Config holds runtime settings. It is built once and passed by value.
type Config struct {
	VaultPath string
	LogLevel  zerolog.Level

	SyncURL          string
	DriveCredentials string
	DriveToken       string

	IdleTimeout    time.Duration
	ClipboardClear time.Duration
	HistoryKeep    int

	Params crypto.Params
	Format vaultfile.Format
}

// Load reads settings through getenv, usually os.Getenv.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		VaultPath:        DefaultVaultFile,
		SyncURL:          getenv(EnvSyncURL),
		DriveCredentials: getenv(EnvDriveCreds),
		DriveToken:       getenv(EnvDriveToken),
		IdleTimeout:      DefaultIdleTimeout,
		ClipboardClear:   DefaultClipboardClear,
		HistoryKeep:      DefaultHistoryKeep,
		Params:           crypto.DefaultParams(),
		Format:           vaultfile.DefaultFormat(),
	}

	if v := getenv(EnvFile); v != "" {
		cfg.VaultPath = v
	}

	level, ok := logging.ParseLevel(getenv(EnvLog))
	if !ok {
		return Config{}, fmt.Errorf("invalid %s: %q", EnvLog, getenv(EnvLog))
	}
	cfg.LogLevel = level

	var err error
	if cfg.IdleTimeout, err = duration(getenv, EnvIdleTimeout, DefaultIdleTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ClipboardClear, err = duration(getenv, EnvClipboardClear, DefaultClipboardClear); err != nil {
		return Config{}, err
	}

	if v := getenv(EnvHistoryKeep); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", EnvHistoryKeep, v)
		}
		cfg.HistoryKeep = n
	}

	return cfg, nil
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

// WithVaultPath returns a copy of c using path, when path is not empty.
func (c Config) WithVaultPath(path string) Config {
	if path != "" {
		c.VaultPath = path
	}
	return c
}

// HistoryPath returns the backup history database location.
func (c Config) HistoryPath() string {
	return storage.HistoryPath(c.VaultPath)
}
