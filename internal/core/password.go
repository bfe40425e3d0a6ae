package core

import (
	"fmt"
	"os"
	"syscall"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/secmem"
	"golang.org/x/term"
)

// PasswordEnv names the environment variable checked before prompting.
const PasswordEnv = "PASSVAULT_PASSWORD"

// ReadPassword reads a password from the terminal without echoing
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	// Read password without echo
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // New line after password

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm() ([]byte, error) {
	password1, err := ReadPassword("Enter master password: ")
	if err != nil {
		return nil, err
	}
	defer secmem.Wipe(password1)

	password2, err := ReadPassword("Confirm master password: ")
	if err != nil {
		return nil, err
	}
	defer secmem.Wipe(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, fmt.Errorf("passwords do not match")
	}
	if len(password1) == 0 {
		return nil, fmt.Errorf("password must not be empty")
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// GetPasswordFromEnv reads the master password from PASSVAULT_PASSWORD
func GetPasswordFromEnv() []byte {
	password := os.Getenv(PasswordEnv)
	if password == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(password))
	copy(result, []byte(password))
	return result
}
