// Package crypto provides cryptographic operations for passvault.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the master password via Argon2id
//   - 12-byte random nonce per encryption operation
//   - 16-byte authentication tag, kept detached from the ciphertext
//
// Key derivation uses Argon2id with:
//   - 16-byte random salt (stored unencrypted in the vault file)
//   - 4 passes over 256 MiB, one lane per CPU
//
// Memory safety:
//   - DeriveKey wipes the password buffer it is given
//   - Decrypt never returns plaintext unless the tag verified
package crypto
