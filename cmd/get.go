package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/session"
)

// Get prints the username for site and copies its password to the
// clipboard, clearing it again after the configured delay
func Get(ctx context.Context, cfg config.Config, site string) {
	if !session.Supported() {
		HandleError(ErrNoClipboard)
	}

	ws := NewWorkspace(cfg)
	v, err := ws.Unlock()
	if err != nil {
		HandleError(err)
	}
	e, ok, err := v.Find(site)
	// Nothing else is needed from the vault
	v.Lock()
	if err != nil {
		HandleError(err)
	}
	if !ok {
		HandleError(fmt.Errorf("%w: %s", ErrEntryNotFound, site))
	}

	clip := session.NewClipboard(session.SystemBackend(), cfg.ClipboardClear)
	if err := clip.Copy(e.Password); err != nil {
		HandleError(fmt.Errorf("failed to copy to clipboard: %w", err))
	}

	fmt.Printf("Username: %s\n", e.Username)
	if cfg.ClipboardClear <= 0 {
		fmt.Println("Password copied to clipboard")
		return
	}

	fmt.Printf("Password copied to clipboard, clearing in %s (Ctrl+C to clear now)\n", cfg.ClipboardClear)
	clip.Wait(ctx)
}
