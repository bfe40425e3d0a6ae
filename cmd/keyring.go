package cmd

import (
	"fmt"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/keyring"
	"github.com/illarion/passvault/internal/secmem"
)

// KeyringSave saves the master password to the OS keyring
func KeyringSave(cfg config.Config) {
	ws := NewWorkspace(cfg)

	// Verify password by unlocking
	v, password, err := ws.UnlockKeep()
	if err != nil {
		HandleError(err)
	}
	v.Lock()
	defer secmem.Wipe(password)

	// Get vault ID (create if not exists)
	vaultID, err := ws.VaultID()
	if err != nil {
		fail(err, nil, password)
	}

	// Save to keyring
	if err := keyring.SavePassword(vaultID, string(password)); err != nil {
		fail(fmt.Errorf("failed to save to keyring: %w", err), nil, password)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the master password from the OS keyring
func KeyringDelete(cfg config.Config) {
	ws := NewWorkspace(cfg)

	// Get vault ID
	vaultID := ws.storedVaultID()
	if vaultID == "" || !keyring.HasPassword(vaultID) {
		fmt.Println("No password stored in keyring")
		return
	}

	// Delete from keyring
	if err := keyring.DeletePassword(vaultID); err != nil {
		HandleError(fmt.Errorf("failed to delete from keyring: %w", err))
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus checks if a password is stored in the keyring
func KeyringStatus(cfg config.Config) {
	ws := NewWorkspace(cfg)

	vaultID := ws.storedVaultID()
	if vaultID != "" && keyring.HasPassword(vaultID) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
