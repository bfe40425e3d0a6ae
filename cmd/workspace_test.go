package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/keyring"
	"github.com/illarion/passvault/internal/storage"
)

const masterPassword = "correct horse battery staple"

func testConfig(t *testing.T) config.Config {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv(core.PasswordEnv, "")

	cfg, err := config.Load(func(string) string { return "" })
	if err != nil {
		t.Fatalf("config.Load failed: %v", err)
	}
	cfg.VaultPath = filepath.Join(t.TempDir(), "vault.bin")
	cfg.Params = crypto.Params{Time: 1, Memory: 64, Threads: 1, KeyLen: crypto.KeySize, SaltLen: crypto.SaltSize}
	cfg.HistoryKeep = 3
	return cfg
}

// stubPasswords answers terminal prompts in order and counts them.
func stubPasswords(t *testing.T, answers ...string) *int {
	t.Helper()
	calls := 0
	orig := readPassword
	readPassword = func(prompt string) ([]byte, error) {
		if calls >= len(answers) {
			t.Fatalf("Unexpected password prompt %q", prompt)
		}
		a := answers[calls]
		calls++
		return []byte(a), nil
	}
	t.Cleanup(func() { readPassword = orig })
	return &calls
}

func initVault(t *testing.T, cfg config.Config) *core.Vault {
	t.Helper()
	ws := NewWorkspace(cfg)
	v, err := core.Init(cfg.VaultPath, []byte(masterPassword), ws.Options())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return v
}

func TestUnlockMissingVault(t *testing.T) {
	cfg := testConfig(t)
	stubPasswords(t)

	_, err := NewWorkspace(cfg).Unlock()
	if !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestUnlockRetriesPrompt(t *testing.T) {
	cfg := testConfig(t)
	initVault(t, cfg).Lock()
	calls := stubPasswords(t, "wrong", "also wrong", masterPassword)

	v, err := NewWorkspace(cfg).Unlock()
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	defer v.Lock()
	if *calls != 3 {
		t.Errorf("Expected 3 prompts, got %d", *calls)
	}
}

func TestUnlockGivesUpAfterThreeAttempts(t *testing.T) {
	cfg := testConfig(t)
	initVault(t, cfg).Lock()
	stubPasswords(t, "a", "b", "c")

	_, err := NewWorkspace(cfg).Unlock()
	if !errors.Is(err, core.ErrWrongPassword) {
		t.Errorf("Expected ErrWrongPassword, got %v", err)
	}
}

func TestUnlockFromEnvironment(t *testing.T) {
	cfg := testConfig(t)
	initVault(t, cfg).Lock()
	stubPasswords(t)
	t.Setenv(core.PasswordEnv, masterPassword)

	v, password, err := NewWorkspace(cfg).UnlockKeep()
	if err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	defer v.Lock()
	if string(password) != masterPassword {
		t.Errorf("UnlockKeep returned %q", password)
	}
}

func TestUnlockFromKeyring(t *testing.T) {
	cfg := testConfig(t)
	initVault(t, cfg).Lock()
	ws := NewWorkspace(cfg)

	id, err := ws.VaultID()
	if err != nil {
		t.Fatal(err)
	}
	if err := keyring.SavePassword(id, masterPassword); err != nil {
		t.Fatal(err)
	}

	stubPasswords(t)
	v, err := ws.Unlock()
	if err != nil {
		t.Fatalf("Unlock with keyring failed: %v", err)
	}
	v.Lock()

	// A stale keyring entry falls back to the prompt
	if err := keyring.SavePassword(id, "outdated"); err != nil {
		t.Fatal(err)
	}
	calls := stubPasswords(t, masterPassword)
	v, err = ws.Unlock()
	if err != nil {
		t.Fatalf("Unlock after stale keyring failed: %v", err)
	}
	v.Lock()
	if *calls != 1 {
		t.Errorf("Expected one prompt, got %d", *calls)
	}
}

func TestSaveKeepsHistory(t *testing.T) {
	cfg := testConfig(t)
	v := initVault(t, cfg)
	defer v.Lock()
	ws := NewWorkspace(cfg)

	for _, site := range []string{"a.com", "b.com", "c.com", "d.com", "e.com"} {
		if err := v.Add(site, "user", "pw"); err != nil {
			t.Fatal(err)
		}
		if err := ws.Save(v, "add "+site); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	h, err := storage.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	snapshots, err := h.ListSnapshots()
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != cfg.HistoryKeep {
		t.Fatalf("Expected %d snapshots, got %d", cfg.HistoryKeep, len(snapshots))
	}

	// Newest snapshot holds the state before the last save
	latest := snapshots[len(snapshots)-1]
	if latest.Reason != "add e.com" {
		t.Errorf("Latest reason = %q", latest.Reason)
	}
	raw, err := h.GetSnapshot(latest.ID)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := core.LoadBytes([]byte(masterPassword), raw, ws.Options())
	if err != nil {
		t.Fatalf("Snapshot does not decrypt: %v", err)
	}
	entries, _ := snap.List()
	if len(entries) != 4 || entries[3].Site != "d.com" {
		t.Errorf("Unexpected snapshot entries: %+v", entries)
	}
}

func TestHistorySharesMasterKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.HistoryKeep = 10
	v := initVault(t, cfg)
	defer v.Lock()
	ws := NewWorkspace(cfg)
	salt := append([]byte(nil), v.Salt()...)

	for _, site := range []string{"a.com", "b.com", "c.com"} {
		if err := v.Add(site, "user", "pw"); err != nil {
			t.Fatal(err)
		}
		if err := ws.Save(v, "add "+site); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	if !bytes.Equal(v.Salt(), salt) {
		t.Error("Salt changed across saves")
	}

	h, err := storage.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	snapshots, err := h.ListSnapshots()
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(snapshots))
	}
	for _, info := range snapshots {
		data, err := h.Decode(info.ID, cfg.Format)
		if err != nil {
			t.Fatalf("Decode #%d failed: %v", info.ID, err)
		}
		if !bytes.Equal(data.Salt, salt) {
			t.Errorf("Snapshot #%d has a different salt", info.ID)
		}

		raw, err := h.GetSnapshot(info.ID)
		if err != nil {
			t.Fatal(err)
		}
		snap, err := core.LoadBytes([]byte(masterPassword), raw, ws.Options())
		if err != nil {
			t.Errorf("Snapshot #%d does not open with the master password: %v", info.ID, err)
			continue
		}
		snap.Lock()
		if _, err := core.LoadBytes([]byte("another password"), raw, ws.Options()); !errors.Is(err, core.ErrWrongPassword) {
			t.Errorf("Snapshot #%d opened with another password: %v", info.ID, err)
		}
	}
}

func TestCompletionHasNoPasswd(t *testing.T) {
	for name, script := range map[string]string{"bash": bashCompletion, "zsh": zshCompletion, "fish": fishCompletion} {
		if strings.Contains(script, "passwd") {
			t.Errorf("%s completion offers a master password change", name)
		}
	}
}

type exitCode int

// stubExit turns exit into a panic carrying the code.
func stubExit(t *testing.T) {
	t.Helper()
	orig := exit
	exit = func(code int) { panic(exitCode(code)) }
	t.Cleanup(func() { exit = orig })
}

func TestFailLocksAndWipes(t *testing.T) {
	cfg := testConfig(t)
	v := initVault(t, cfg)
	stubExit(t)
	password := []byte(masterPassword)

	func() {
		defer func() {
			if r := recover(); r != exitCode(1) {
				t.Errorf("Expected exit 1, got %v", r)
			}
		}()
		fail(storage.ErrSnapshotNotFound, v, password)
	}()

	if !v.IsLocked() {
		t.Error("Vault still unlocked after fail")
	}
	if !bytes.Equal(password, make([]byte, len(masterPassword))) {
		t.Errorf("Password not wiped: %q", password)
	}
}
