package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/storage"
)

// Compact prunes the backup history to the retention limit and compacts
// the database to reclaim unused space
func Compact(cfg config.Config) {
	historyPath := cfg.HistoryPath()

	// Get file size before
	info, err := os.Stat(historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No history to compact")
			return
		}
		HandleError(err)
	}
	sizeBefore := info.Size()

	ws := NewWorkspace(cfg)
	var removed int
	err = ws.withHistory(func(h *storage.Storage) error {
		var err error
		if removed, err = h.Prune(cfg.HistoryKeep); err != nil {
			return err
		}
		return h.Compact()
	})
	if err != nil {
		HandleError(err)
	}

	// Get file size after
	info, err = os.Stat(historyPath)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	if removed > 0 {
		fmt.Printf("Pruned %d snapshots\n", removed)
	}
	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
