// Package core provides the passvault entry store.
//
// Core operations include:
//   - Create/Init: New vault with a fresh salt and password-derived key
//   - Load/LoadBytes: Authenticate and decrypt a vault file or snapshot
//   - Save: Re-encrypt all entries under a fresh nonce and write atomically
//   - Add/Update/Delete/Find/List: In-memory entry CRUD, no implicit save
//   - Lock/Unlock: Wipe the key and entries on demand, reopen from disk
//
// Sites are matched case-insensitively; the first match wins. A wrong
// password and a tampered file are both reported as ErrWrongPassword.
package core
