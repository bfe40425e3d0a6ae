package cmd

import (
	"fmt"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/secmem"
	"github.com/illarion/passvault/internal/storage"
)

// Diff compares a history snapshot (the latest one by default) with the
// current vault. Passwords are never printed, only the sites whose
// password changed.
func Diff(cfg config.Config, idArg string) {
	ws := NewWorkspace(cfg)
	v, password, err := ws.UnlockKeep()
	if err != nil {
		HandleError(err)
	}
	defer v.Lock()
	defer secmem.Wipe(password)

	var id uint64
	if idArg != "" {
		if id, err = parseSnapshotID(idArg); err != nil {
			fail(err, v, password)
		}
	}

	var raw []byte
	err = ws.withHistory(func(h *storage.Storage) error {
		if id == 0 {
			latest, ok, err := h.Latest()
			if err != nil {
				return err
			}
			if !ok {
				return storage.ErrSnapshotNotFound
			}
			id = latest.ID
		}
		var err error
		raw, err = h.GetSnapshot(id)
		return err
	})
	if err != nil {
		fail(err, v, password)
	}

	// Snapshots share the vault's salt and master password
	snap, err := core.LoadBytes(append([]byte(nil), password...), raw, ws.Options())
	if err != nil {
		fail(err, v, password)
	}
	defer snap.Lock()

	before, err := snap.List()
	if err != nil {
		snap.Lock()
		fail(err, v, password)
	}
	after, err := v.List()
	if err != nil {
		snap.Lock()
		fail(err, v, password)
	}

	out := core.DiffEntries(before, after)
	changed := core.ChangedPasswords(before, after)
	if out == "" && len(changed) == 0 {
		fmt.Printf("No differences since snapshot #%d\n", id)
		return
	}

	fmt.Printf("Changes since snapshot #%d:\n", id)
	fmt.Print(out)
	for _, site := range changed {
		fmt.Printf("* %s: password changed\n", site)
	}
}
