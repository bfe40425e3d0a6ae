package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/storage"
)

// History lists the backup snapshots, newest first
func History(cfg config.Config) {
	ws := NewWorkspace(cfg)
	if !ws.Exists() {
		HandleError(core.ErrNotInitialized)
	}

	err := ws.withHistory(func(h *storage.Storage) error {
		snapshots, err := h.ListSnapshots()
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshots yet")
			return nil
		}

		fmt.Println("Snapshots:")
		for i := len(snapshots) - 1; i >= 0; i-- {
			s := snapshots[i]
			fmt.Printf("  #%-4d %s  %-10s %s\n", s.ID, s.Created.Format(time.DateTime), formatSize(s.Size), s.Reason)
		}
		return nil
	})
	if err != nil {
		HandleError(err)
	}
}

// Restore replaces the vault file with a snapshot. The file being replaced
// is snapshotted first.
func Restore(cfg config.Config, idArg string) {
	id, err := parseSnapshotID(idArg)
	if err != nil {
		HandleError(err)
	}

	ws := NewWorkspace(cfg)
	err = ws.withHistory(func(h *storage.Storage) error {
		return h.Restore(id, cfg.VaultPath, cfg.Format)
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("✓ Restored snapshot #%d to %s\n", id, cfg.VaultPath)
}

func parseSnapshotID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid snapshot id %q", s)
	}
	return id, nil
}
