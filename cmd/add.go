package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
)

// Add stores a new entry, prompting for its password
func Add(cfg config.Config, site, username string) {
	ws := NewWorkspace(cfg)
	v, err := ws.Unlock()
	if err != nil {
		HandleError(err)
	}
	defer v.Lock()

	if _, exists, _ := v.Find(site); exists {
		fmt.Fprintf(os.Stderr, "Note: %s already has an entry, lookups return the first one\n", site)
	}

	secret, err := readEntryPassword(site)
	if err != nil {
		fail(err, v)
	}
	if core.IsWeakPassword(secret, site, username) {
		fmt.Fprintf(os.Stderr, "Warning: password for %s is weak\n", site)
	}

	if err := v.Add(site, username, secret); err != nil {
		fail(err, v)
	}
	if err := ws.Save(v, "add "+site); err != nil {
		fail(err, v)
	}

	fmt.Printf("✓ Added %s\n", site)
}
