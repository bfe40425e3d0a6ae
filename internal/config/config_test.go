package config

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(env(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VaultPath != DefaultVaultFile {
		t.Errorf("VaultPath = %q", cfg.VaultPath)
	}
	if cfg.LogLevel != zerolog.WarnLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.IdleTimeout != DefaultIdleTimeout || cfg.ClipboardClear != DefaultClipboardClear {
		t.Errorf("Unexpected timeouts: %v %v", cfg.IdleTimeout, cfg.ClipboardClear)
	}
	if cfg.HistoryKeep != DefaultHistoryKeep {
		t.Errorf("HistoryKeep = %d", cfg.HistoryKeep)
	}
	if cfg.Params.Time != 4 || cfg.Params.Memory != 256*1024 || cfg.Params.KeyLen != 32 {
		t.Errorf("Unexpected KDF params: %+v", cfg.Params)
	}
	if cfg.Format.Magic != 0x53504D56 || cfg.Format.Version != 1 {
		t.Errorf("Unexpected format: %+v", cfg.Format)
	}
	if cfg.HistoryPath() != "vault.bin.history" {
		t.Errorf("HistoryPath = %q", cfg.HistoryPath())
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(env(map[string]string{
		EnvFile:           "/data/secrets.bin",
		EnvLog:            "debug",
		EnvSyncURL:        "https://backup.example.com/vault",
		EnvIdleTimeout:    "90s",
		EnvClipboardClear: "5s",
		EnvHistoryKeep:    "3",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VaultPath != "/data/secrets.bin" {
		t.Errorf("VaultPath = %q", cfg.VaultPath)
	}
	if cfg.LogLevel != zerolog.DebugLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.SyncURL != "https://backup.example.com/vault" {
		t.Errorf("SyncURL = %q", cfg.SyncURL)
	}
	if cfg.IdleTimeout != 90*time.Second || cfg.ClipboardClear != 5*time.Second {
		t.Errorf("Unexpected timeouts: %v %v", cfg.IdleTimeout, cfg.ClipboardClear)
	}
	if cfg.HistoryKeep != 3 {
		t.Errorf("HistoryKeep = %d", cfg.HistoryKeep)
	}

	flagged := cfg.WithVaultPath("other.bin")
	if flagged.VaultPath != "other.bin" || cfg.VaultPath != "/data/secrets.bin" {
		t.Error("WithVaultPath should return a modified copy")
	}
	if cfg.WithVaultPath("").VaultPath != cfg.VaultPath {
		t.Error("Empty path should keep the configured one")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	bad := []map[string]string{
		{EnvLog: "chatty"},
		{EnvIdleTimeout: "soon"},
		{EnvClipboardClear: "-1s"},
		{EnvHistoryKeep: "-2"},
		{EnvHistoryKeep: "many"},
	}
	for _, m := range bad {
		_, err := Load(env(m))
		if err == nil {
			t.Errorf("Load(%v) should fail", m)
			continue
		}
		for k := range m {
			if !strings.Contains(err.Error(), k) {
				t.Errorf("Error %q should name %s", err, k)
			}
		}
	}
}
