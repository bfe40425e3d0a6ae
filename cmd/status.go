package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/keyring"
	"github.com/illarion/passvault/internal/storage"
)

// Status shows the vault file state without requiring a password
func Status(cfg config.Config) {
	info, err := os.Stat(cfg.VaultPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No vault found at %s\n", cfg.VaultPath)
			fmt.Println("Run 'passvault init' to create one")
			return
		}
		HandleError(err)
	}

	fmt.Printf("Vault:    %s (%s)\n", cfg.VaultPath, formatSize(info.Size()))
	fmt.Printf("Modified: %s\n", info.ModTime().Format(time.RFC3339))

	data, err := cfg.Format.Read(cfg.VaultPath)
	if err != nil {
		fmt.Printf("Format:   damaged (%s)\n", err)
	} else {
		fmt.Printf("Format:   v%d, AES-256-GCM, Argon2id (%d-byte salt)\n", cfg.Format.Version, len(data.Salt))
	}

	ws := NewWorkspace(cfg)
	err = ws.withHistory(func(h *storage.Storage) error {
		snapshots, err := h.ListSnapshots()
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("History:  no snapshots")
		} else {
			last := snapshots[len(snapshots)-1]
			fmt.Printf("History:  %d snapshots, latest #%d at %s\n", len(snapshots), last.ID, last.Created.Format(time.RFC3339))
		}

		vaultID, err := h.GetVaultID()
		if err == nil && keyring.HasPassword(vaultID) {
			fmt.Println("Keyring:  password stored")
		} else {
			fmt.Println("Keyring:  not stored")
		}
		return nil
	})
	if err != nil {
		HandleError(err)
	}
}
