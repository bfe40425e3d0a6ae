package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/illarion/passvault/internal/crypto"
	"github.com/illarion/passvault/internal/secmem"
	"github.com/illarion/passvault/internal/vaultfile"
)

var (
	ErrNotInitialized = errors.New("vault not initialized")
	ErrAlreadyExists  = errors.New("vault already exists")
	ErrWrongPassword  = fmt.Errorf("wrong password or corrupted vault: %w", crypto.ErrAuthFailed)
	ErrLocked         = errors.New("vault is locked")
	ErrNoPath         = errors.New("vault has no file path")
	ErrCorruptEntries = errors.New("vault entries could not be decoded")
)

// Options carries the immutable configuration a vault is created or loaded
// with.
type Options struct {
	Params crypto.Params
	Format vaultfile.Format
}

// DefaultOptions returns the production KDF parameters and file format.
func DefaultOptions() Options {
	return Options{
		Params: crypto.DefaultParams(),
		Format: vaultfile.DefaultFormat(),
	}
}

// Vault holds the decrypted entry list and the live master key.
// All methods are safe for concurrent use; Lock may be called at any time
// from another goroutine.
type Vault struct {
	mu      sync.Mutex
	opts    Options
	path    string
	salt    []byte
	key     *secmem.Key
	entries entryList
	locked  bool
}

// Create makes a new, empty, unlocked vault. The password buffer is wiped.
// Nothing is written to disk until Save.
func Create(password []byte, opts Options) (*Vault, error) {
	defer secmem.Wipe(password)

	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}

	salt, err := opts.Params.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key := crypto.DeriveKey(password, salt, opts.Params)

	return &Vault{
		opts:    opts,
		salt:    salt,
		key:     secmem.NewKey(key),
		entries: entryList{},
	}, nil
}

// Init creates a new vault and saves it to path. It refuses to overwrite an
// existing file.
func Init(path string, password []byte, opts Options) (*Vault, error) {
	if _, err := os.Stat(path); err == nil {
		secmem.Wipe(password)
		return nil, ErrAlreadyExists
	}

	v, err := Create(password, opts)
	if err != nil {
		return nil, err
	}
	if err := v.Save(path); err != nil {
		v.Lock()
		return nil, err
	}
	return v, nil
}

// Load reads the vault file at path and unlocks it with password. The
// password buffer is wiped. File format errors are returned unchanged
// (they wrap vaultfile.ErrMalformed); a failed authentication returns
// ErrWrongPassword.
func Load(password []byte, path string, opts Options) (*Vault, error) {
	v := &Vault{opts: opts, path: path, locked: true}
	if err := v.unlock(password); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadBytes unlocks an in-memory vault file, such as a history snapshot.
// The returned vault has no path; Save needs an explicit one.
func LoadBytes(password []byte, raw []byte, opts Options) (*Vault, error) {
	v := &Vault{opts: opts, locked: true}

	data, err := opts.Format.Unmarshal(raw)
	if err != nil {
		secmem.Wipe(password)
		return nil, err
	}
	if err := v.open(password, data); err != nil {
		return nil, err
	}
	return v, nil
}

// unlock reads, authenticates and decodes the file at v.path. Must be
// called with v.mu held or before v is shared.
func (v *Vault) unlock(password []byte) error {
	data, err := v.opts.Format.Read(v.path)
	if err != nil {
		secmem.Wipe(password)
		return err
	}
	return v.open(password, data)
}

func (v *Vault) open(password []byte, data vaultfile.Data) error {
	defer secmem.Wipe(password)

	if err := v.opts.Params.Validate(); err != nil {
		return err
	}

	key := crypto.DeriveKey(password, data.Salt, v.opts.Params)

	plaintext, err := crypto.Decrypt(data.Ciphertext, key, data.Nonce, data.Tag)
	if err != nil {
		secmem.Wipe(key)
		return ErrWrongPassword
	}

	entries, err := decodeEntries(plaintext)
	secmem.Wipe(plaintext)
	if err != nil {
		secmem.Wipe(key)
		return err
	}

	v.salt = data.Salt
	v.key = secmem.NewKey(key)
	v.entries = entries
	v.locked = false
	return nil
}

// Unlock re-opens a locked vault from the file it was last loaded from or
// saved to. Unlocking an unlocked vault is a no-op apart from wiping the
// password.
func (v *Vault) Unlock(password []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.locked {
		secmem.Wipe(password)
		return nil
	}
	if v.path == "" {
		secmem.Wipe(password)
		return ErrNoPath
	}
	return v.unlock(password)
}

// Save encrypts the entries under a fresh nonce and atomically writes the
// vault file. The serialized plaintext is wiped afterwards.
func (v *Vault) Save(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return ErrLocked
	}

	plaintext, err := encodeEntries(v.entries)
	if err != nil {
		return err
	}
	ciphertext, nonce, tag, err := crypto.Encrypt(plaintext, v.key.Bytes())
	secmem.Wipe(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt vault: %w", err)
	}

	data := vaultfile.Data{
		Salt:       v.salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Tag:        tag,
	}
	if err := v.opts.Format.Write(path, data); err != nil {
		return err
	}

	v.path = path
	return nil
}

// Lock wipes the master key and drops the decrypted entries. The file path
// and salt are kept so Unlock can reopen the vault. Safe to call repeatedly.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.key != nil {
		v.key.Destroy()
		v.key = nil
	}
	v.entries.clear()
	v.entries = nil
	v.locked = true
}

// IsLocked reports whether the vault is locked.
func (v *Vault) IsLocked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.locked
}

// Path returns the file the vault was last loaded from or saved to.
func (v *Vault) Path() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.path
}

// Salt returns a copy of the KDF salt.
func (v *Vault) Salt() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.salt...)
}

// Add appends an entry. Duplicate sites are allowed.
func (v *Vault) Add(site, username, password string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return ErrLocked
	}
	v.entries = append(v.entries, Entry{Site: site, Username: username, Password: password})
	return nil
}

// Update replaces the first entry whose site matches (case-insensitively)
// with e. It reports whether a match was found.
func (v *Vault) Update(site string, e Entry) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return false, ErrLocked
	}
	return v.entries.replace(site, e), nil
}

// Delete removes the first entry whose site matches (case-insensitively).
// It reports whether a match was found.
func (v *Vault) Delete(site string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return false, ErrLocked
	}
	return v.entries.remove(site), nil
}

// Find returns the first entry whose site matches (case-insensitively).
func (v *Vault) Find(site string) (Entry, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return Entry{}, false, ErrLocked
	}
	i := v.entries.indexOf(site)
	if i < 0 {
		return Entry{}, false, nil
	}
	return v.entries[i], true, nil
}

// List returns a copy of all entries in insertion order.
func (v *Vault) List() ([]Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.locked {
		return nil, ErrLocked
	}
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out, nil
}

func encodeEntries(entries entryList) ([]byte, error) {
	if entries == nil {
		entries = entryList{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entries: %w", err)
	}
	return data, nil
}

func decodeEntries(plaintext []byte) (entryList, error) {
	var entries entryList
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEntries, err)
	}
	if entries == nil {
		entries = entryList{}
	}
	return entries, nil
}
