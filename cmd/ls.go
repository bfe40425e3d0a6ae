package cmd

import (
	"fmt"

	"github.com/illarion/passvault/internal/config"
)

// Ls shows the sites and usernames stored in the vault
func Ls(cfg config.Config) {
	ws := NewWorkspace(cfg)
	v, err := ws.Unlock()
	if err != nil {
		HandleError(err)
	}
	defer v.Lock()

	entries, err := v.List()
	if err != nil {
		fail(err, v)
	}

	if len(entries) == 0 {
		fmt.Println("No entries in vault")
		return
	}

	fmt.Printf("Entries in %s:\n", cfg.VaultPath)
	for _, e := range entries {
		fmt.Printf("  %s (%s)\n", e.Site, e.Username)
	}
}
