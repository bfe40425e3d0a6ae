package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/keyring"
	"github.com/illarion/passvault/internal/secmem"
	"github.com/illarion/passvault/internal/storage"
)

// maxPasswordAttempts bounds interactive master password prompts.
const maxPasswordAttempts = 3

// Workspace ties the vault file to its backup history.
type Workspace struct {
	Config config.Config
}

// NewWorkspace returns a workspace for cfg.VaultPath.
func NewWorkspace(cfg config.Config) *Workspace {
	return &Workspace{Config: cfg}
}

// Options returns the vault options derived from the configuration.
func (w *Workspace) Options() core.Options {
	return core.Options{Params: w.Config.Params, Format: w.Config.Format}
}

// Exists reports whether the vault file is present.
func (w *Workspace) Exists() bool {
	_, err := os.Stat(w.Config.VaultPath)
	return err == nil
}

// withHistory opens the history database for the duration of fn. The
// database is never held open between operations so concurrent passvault
// processes only wait briefly on the file lock.
func (w *Workspace) withHistory(fn func(h *storage.Storage) error) error {
	h, err := storage.OpenInitialized(w.Config.HistoryPath())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer h.Close()
	return fn(h)
}

// VaultID returns the stable vault ID, creating it on first use.
func (w *Workspace) VaultID() (string, error) {
	var id string
	err := w.withHistory(func(h *storage.Storage) error {
		var err error
		id, err = h.GetOrCreateVaultID()
		return err
	})
	return id, err
}

// storedVaultID returns the vault ID without creating one.
func (w *Workspace) storedVaultID() string {
	if !w.Exists() {
		return ""
	}
	var id string
	w.withHistory(func(h *storage.Storage) error {
		id, _ = h.GetVaultID()
		return nil
	})
	return id
}

// Unlock loads the vault. The password comes from PASSVAULT_PASSWORD, the
// OS keyring, or up to three terminal prompts, in that order.
func (w *Workspace) Unlock() (*core.Vault, error) {
	v, _, err := w.unlock(false)
	return v, err
}

// UnlockKeep is like Unlock but also returns a copy of the password that
// worked. The caller must wipe it.
func (w *Workspace) UnlockKeep() (*core.Vault, []byte, error) {
	return w.unlock(true)
}

func (w *Workspace) unlock(keep bool) (*core.Vault, []byte, error) {
	if !w.Exists() {
		return nil, nil, core.ErrNotInitialized
	}

	try := func(password []byte) (*core.Vault, []byte, error) {
		var kept []byte
		if keep {
			kept = append([]byte(nil), password...)
		}
		v, err := core.Load(password, w.Config.VaultPath, w.Options())
		if err != nil {
			secmem.Wipe(kept)
			return nil, nil, err
		}
		return v, kept, nil
	}

	// Environment variable is authoritative, no fallback
	if password := core.GetPasswordFromEnv(); password != nil {
		return try(password)
	}

	if id := w.storedVaultID(); id != "" {
		if stored, err := keyring.GetPassword(id); err == nil {
			v, kept, err := try([]byte(stored))
			if err == nil {
				log.Debug().Msg("Vault unlocked with keyring password")
				return v, kept, nil
			}
			if !errors.Is(err, core.ErrWrongPassword) {
				return nil, nil, err
			}
			fmt.Fprintln(os.Stderr, "Warning: password stored in keyring is out of date")
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxPasswordAttempts; attempt++ {
		password, err := readPassword("Enter master password: ")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read password: %w", err)
		}

		v, kept, err := try(password)
		if err == nil {
			return v, kept, nil
		}
		if !errors.Is(err, core.ErrWrongPassword) {
			return nil, nil, err
		}
		lastErr = err
		if attempt < maxPasswordAttempts {
			fmt.Fprintln(os.Stderr, "Wrong password, try again")
		}
	}
	return nil, nil, lastErr
}

// Save backs up the current vault file into history, writes v, and prunes
// snapshots beyond the configured retention.
func (w *Workspace) Save(v *core.Vault, reason string) error {
	path := w.Config.VaultPath
	return w.withHistory(func(h *storage.Storage) error {
		info, ok, err := h.SnapshotFile(path, reason)
		if err != nil {
			return err
		}
		if ok {
			log.Debug().Uint64("snapshot", info.ID).Str("reason", reason).Msg("Backed up vault")
		}

		if err := v.Save(path); err != nil {
			return err
		}

		removed, err := h.Prune(w.Config.HistoryKeep)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to prune history")
			return nil
		}
		if removed > 0 {
			log.Info().Int("removed", removed).Msg("Pruned old snapshots")
		}
		return nil
	})
}
