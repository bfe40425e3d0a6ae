package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"runtime"

	"github.com/illarion/passvault/internal/secmem"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 16 // Salt size in bytes
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size

	DefaultTime   = 4          // Argon2id passes
	DefaultMemory = 256 * 1024 // Argon2id memory in KiB (256 MiB)
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrInvalidParams = errors.New("invalid key derivation parameters")
)

// Params holds the Argon2id cost parameters. Values are fixed for the
// lifetime of a vault; they are not stored in the vault file.
type Params struct {
	Time    uint32 // number of passes
	Memory  uint32 // memory in KiB
	Threads uint8  // parallelism
	KeyLen  uint32
	SaltLen int
}

// DefaultParams returns the production parameters.
func DefaultParams() Params {
	threads := runtime.NumCPU()
	if threads > 255 {
		threads = 255
	}
	if threads < 1 {
		threads = 1
	}
	return Params{
		Time:    DefaultTime,
		Memory:  DefaultMemory,
		Threads: uint8(threads),
		KeyLen:  KeySize,
		SaltLen: SaltSize,
	}
}

// Validate checks that the parameters can drive Argon2id and produce an
// AES-256 key.
func (p Params) Validate() error {
	switch {
	case p.Time == 0:
		return fmt.Errorf("%w: time must be positive", ErrInvalidParams)
	case p.Memory < 8*uint32(p.Threads) || p.Memory == 0:
		return fmt.Errorf("%w: memory must be at least 8 KiB per thread", ErrInvalidParams)
	case p.Threads == 0:
		return fmt.Errorf("%w: threads must be positive", ErrInvalidParams)
	case p.KeyLen != KeySize:
		return fmt.Errorf("%w: key length must be %d", ErrInvalidParams, KeySize)
	case p.SaltLen <= 0:
		return fmt.Errorf("%w: salt length must be positive", ErrInvalidParams)
	}
	return nil
}

// NewSalt generates a random salt of p.SaltLen bytes.
func (p Params) NewSalt() ([]byte, error) {
	return GenerateRandom(p.SaltLen)
}

// DeriveKey derives an encryption key from a password. The password buffer
// is wiped before DeriveKey returns.
func DeriveKey(password, salt []byte, p Params) []byte {
	defer secmem.Wipe(password)
	return argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt encrypts plaintext using AES-256-GCM under a fresh random nonce.
// The ciphertext has the same length as the plaintext; the tag is returned
// separately.
func Encrypt(plaintext, key []byte) (ciphertext, nonce, tag []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, nil, fmt.Errorf("invalid key size %d", len(key))
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, nil, err
	}

	// Generate random nonce
	nonce, err = GenerateRandom(NonceSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Encrypt and authenticate
	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	// Split off the tag
	ciphertext = sealed[:len(plaintext):len(plaintext)]
	tag = make([]byte, TagSize)
	copy(tag, sealed[len(plaintext):])

	return ciphertext, nonce, tag, nil
}

// Decrypt verifies the tag and decrypts ciphertext using AES-256-GCM.
// Any failure, including malformed sizes, is reported as ErrAuthFailed and no
// plaintext is returned.
func Decrypt(ciphertext, key, nonce, tag []byte) ([]byte, error) {
	if len(key) != KeySize || len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrAuthFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, ErrAuthFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	// Decrypt and verify
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}

	return plaintext, nil
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
