package secmem

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}

// WipeAll wipes every slice passed in.
func WipeAll(bufs ...[]byte) {
	for _, b := range bufs {
		Wipe(b)
	}
}

// WipeRunes overwrites a character buffer with zero runes.
func WipeRunes(r []rune) {
	for i := range r {
		r[i] = 0
	}
}

// Key owns a fixed-length secret, typically the vault master key.
// It must not be copied; pass *Key around.
type Key struct {
	mu  sync.Mutex
	buf *memguard.LockedBuffer
}

// NewKey moves b into guarded memory. The source slice is wiped.
func NewKey(b []byte) *Key {
	return &Key{buf: memguard.NewBufferFromBytes(b)}
}

// Bytes returns the key material, or nil once the key has been destroyed.
// The returned slice aliases guarded memory and is only valid until Destroy.
func (k *Key) Bytes() []byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.buf == nil || !k.buf.IsAlive() {
		return nil
	}
	return k.buf.Bytes()
}

// Len returns the key length, 0 after Destroy.
func (k *Key) Len() int {
	return len(k.Bytes())
}

// Alive reports whether the key still holds material.
func (k *Key) Alive() bool {
	return k.Bytes() != nil
}

// Destroy wipes the key. Safe to call more than once.
func (k *Key) Destroy() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.buf != nil {
		k.buf.Destroy()
		k.buf = nil
	}
}

// Purge destroys every guarded buffer still alive in the process.
func Purge() {
	memguard.Purge()
}

// Exit purges guarded memory and terminates the process with code.
func Exit(code int) {
	memguard.SafeExit(code)
}
