package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/core"
	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/secmem"
	"github.com/illarion/passvault/internal/storage"
	"github.com/illarion/passvault/internal/sync"
	"github.com/illarion/passvault/internal/vaultfile"
)

var (
	ErrEntryNotFound = errors.New("no entry for site")
	ErrNoClipboard   = errors.New("no clipboard utility available")
)

// readPassword prompts on the terminal. Tests replace it.
var readPassword = core.ReadPassword

// exit ends the process after HandleError. Tests replace it.
var exit = secmem.Exit

// GetPassword retrieves password from environment or prompts user
// The caller is responsible for calling secmem.Wipe on the returned password
func GetPassword(prompt string) ([]byte, error) {
	// Try environment variable first
	password := core.GetPasswordFromEnv()
	if password != nil {
		return password, nil
	}

	// Prompt user
	password, err := readPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// GetPasswordForInit retrieves password for init command
// Checks environment variable first, then prompts with confirmation
func GetPasswordForInit() ([]byte, error) {
	// Try environment variable first
	password := core.GetPasswordFromEnv()
	if password != nil {
		return password, nil
	}

	// Fall back to confirmation prompt
	return core.ReadPasswordConfirm()
}

// readEntryPassword prompts twice for the password stored under site.
func readEntryPassword(site string) (string, error) {
	first, err := readPassword(fmt.Sprintf("Password for %s: ", site))
	if err != nil {
		return "", err
	}
	defer secmem.Wipe(first)

	second, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	defer secmem.Wipe(second)

	if !crypto.ConstantTimeCompare(first, second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(first), nil
}

// HandleError handles common errors consistently
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: vault not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'passvault init' first or set PASSVAULT_FILE\n")
	case errors.Is(err, core.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: vault already exists\n")
		fmt.Fprintf(os.Stderr, "Use 'passvault status' to see current state\n")
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password or corrupted vault\n")
	case errors.Is(err, vaultfile.ErrMalformed), errors.Is(err, core.ErrCorruptEntries):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'passvault history' and 'passvault restore <id>' to recover a backup\n")
	case errors.Is(err, storage.ErrSnapshotNotFound):
		fmt.Fprintf(os.Stderr, "Error: snapshot not found\n")
		fmt.Fprintf(os.Stderr, "Use 'passvault history' to list snapshots\n")
	case errors.Is(err, sync.ErrNotConfigured):
		fmt.Fprintf(os.Stderr, "Error: remote sync not configured\n")
		fmt.Fprintf(os.Stderr, "Set PASSVAULT_SYNC_URL or use --drive\n")
	case errors.Is(err, ErrNoClipboard):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'passvault show' to print the password instead\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	exit(1)
}

// fail locks v and wipes secrets, then reports err. HandleError does not
// return, so deferred cleanup in the caller never runs.
func fail(err error, v *core.Vault, secrets ...[]byte) {
	if v != nil {
		v.Lock()
	}
	secmem.WipeAll(secrets...)
	HandleError(err)
}

func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
