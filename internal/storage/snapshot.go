package storage

import (
	"fmt"
	"time"

	"github.com/illarion/passvault/internal/vaultfile"
)

// SnapshotInfo describes one stored copy of the vault file
type SnapshotInfo struct {
	ID      uint64    `json:"id"`
	Created time.Time `json:"created"`
	Size    int64     `json:"size"`
	Reason  string    `json:"reason"`
}

// Decode parses a stored snapshot with the vault file codec, rejecting
// snapshots that are not valid vault files.
func (s *Storage) Decode(id uint64, format vaultfile.Format) (vaultfile.Data, error) {
	raw, err := s.GetSnapshot(id)
	if err != nil {
		return vaultfile.Data{}, err
	}
	return format.Unmarshal(raw)
}

// Restore validates snapshot id and atomically writes it over vaultPath.
// The file being replaced is itself snapshotted first, so a restore can be
// undone.
func (s *Storage) Restore(id uint64, vaultPath string, format vaultfile.Format) error {
	raw, err := s.GetSnapshot(id)
	if err != nil {
		return err
	}
	if _, err := format.Unmarshal(raw); err != nil {
		return fmt.Errorf("snapshot %d is not a valid vault: %w", id, err)
	}

	if _, _, err := s.SnapshotFile(vaultPath, fmt.Sprintf("before restore of #%d", id)); err != nil {
		return err
	}

	return vaultfile.WriteAtomic(vaultPath, raw, vaultfile.FilePerm)
}
