package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/storage"
	"github.com/illarion/passvault/internal/sync"
)

// newSyncer picks Google Drive when requested, HTTP otherwise.
func newSyncer(cfg config.Config, useDrive bool) sync.Syncer {
	if useDrive {
		creds, token := sync.DefaultDrivePaths()
		if cfg.DriveCredentials != "" {
			creds = cfg.DriveCredentials
		}
		if cfg.DriveToken != "" {
			token = cfg.DriveToken
		}
		return sync.NewDriveSyncer(creds, token, cfg.Format)
	}
	return sync.NewHTTPSyncer(cfg.SyncURL, cfg.Format)
}

// Push uploads the encrypted vault file to the remote
func Push(ctx context.Context, cfg config.Config, useDrive bool) {
	ws := NewWorkspace(cfg)
	if !ws.Exists() {
		HandleError(core.ErrNotInitialized)
	}

	if err := newSyncer(cfg, useDrive).Push(ctx, cfg.VaultPath); err != nil {
		HandleError(err)
	}
	fmt.Println("✓ Vault pushed")
}

// Pull downloads the remote vault, keeping the local file in history
func Pull(ctx context.Context, cfg config.Config, useDrive bool) {
	ws := NewWorkspace(cfg)

	err := ws.withHistory(func(h *storage.Storage) error {
		_, _, err := h.SnapshotFile(cfg.VaultPath, "before pull")
		return err
	})
	if err != nil {
		HandleError(err)
	}

	if err := newSyncer(cfg, useDrive).Pull(ctx, cfg.VaultPath); err != nil {
		HandleError(err)
	}
	fmt.Println("✓ Vault pulled")
}
