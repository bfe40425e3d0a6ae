// Package sync copies the encrypted vault file to and from a remote store.
//
// Only ciphertext leaves the machine. A pulled file is checked with the
// vault file codec before it replaces the local one, so a truncated or
// foreign download never overwrites a working vault.
package sync

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/vaultfile"
)

var (
	ErrNoRemote      = errors.New("no remote vault found")
	ErrNotConfigured = errors.New("remote sync not configured")
)

// Syncer transfers the vault file at path.
type Syncer interface {
	// Push uploads the local encrypted vault to the remote
	Push(ctx context.Context, path string) error

	// Pull downloads the remote vault and replaces the local file
	Pull(ctx context.Context, path string) error
}

// readLocal reads the vault at path and refuses to upload anything that
// is not a well-formed vault file.
func readLocal(path string, format vaultfile.Format) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read local vault: %w", err)
	}
	if _, err := format.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("local vault is invalid: %w", err)
	}
	return raw, nil
}

// install validates downloaded bytes and atomically writes them to path.
func install(path string, raw []byte, format vaultfile.Format) error {
	if _, err := format.Unmarshal(raw); err != nil {
		return fmt.Errorf("remote vault is invalid: %w", err)
	}
	if err := vaultfile.WriteAtomic(path, raw, vaultfile.FilePerm); err != nil {
		return fmt.Errorf("failed to write local vault: %w", err)
	}
	return nil
}
