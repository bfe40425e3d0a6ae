package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
)

// Init creates a new, empty vault file
func Init(cfg config.Config) {
	ws := NewWorkspace(cfg)
	if ws.Exists() {
		HandleError(core.ErrAlreadyExists)
	}

	// Read password (env var or prompt with confirmation)
	password, err := GetPasswordForInit()
	if err != nil {
		HandleError(err)
	}
	if core.IsWeakPassword(string(password)) {
		fmt.Fprintln(os.Stderr, "Warning: master password is weak and could be guessed from a stolen vault file")
	}

	// Init wipes the password
	v, err := core.Init(cfg.VaultPath, password, ws.Options())
	if err != nil {
		HandleError(err)
	}
	defer v.Lock()

	if _, err := ws.VaultID(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to initialize history: %s\n", err)
	}

	fmt.Printf("✓ Initialized %s\n", cfg.VaultPath)
}
