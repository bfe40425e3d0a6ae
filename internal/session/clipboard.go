package session

import (
	"context"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"
)

// Backend reads and writes the system clipboard.
type Backend interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

type systemBackend struct{}

func (systemBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }
func (systemBackend) ReadAll() (string, error)   { return clipboard.ReadAll() }

// SystemBackend returns the OS clipboard.
func SystemBackend() Backend {
	return systemBackend{}
}

// Supported reports whether a system clipboard utility is available.
func Supported() bool {
	return !clipboard.Unsupported
}

// Clipboard copies secrets and clears them again after a delay, unless
// the user has copied something else in the meantime.
type Clipboard struct {
	mu      sync.Mutex
	backend Backend
	delay   time.Duration
	copied  string
	timer   *time.Timer
	done    chan struct{}
}

// NewClipboard returns a clipboard that clears after delay. A delay of
// zero never clears.
func NewClipboard(backend Backend, delay time.Duration) *Clipboard {
	return &Clipboard{backend: backend, delay: delay}
}

// Copy writes secret to the clipboard and schedules the clear. A pending
// clear from an earlier Copy is cancelled.
func (c *Clipboard) Copy(secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	if err := c.backend.WriteAll(secret); err != nil {
		return err
	}
	if c.delay <= 0 {
		return nil
	}

	c.copied = secret
	done := make(chan struct{})
	c.done = done
	c.timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.done == done {
			c.clearLocked()
		}
	})
	return nil
}

// Clear clears a pending copy immediately.
func (c *Clipboard) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		c.clearLocked()
	}
}

// Wait blocks until the pending copy is cleared. When ctx ends first the
// clipboard is cleared immediately and ctx.Err() is returned.
func (c *Clipboard) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.Clear()
		return ctx.Err()
	}
}

func (c *Clipboard) cancelLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.copied = ""
}

func (c *Clipboard) clearLocked() {
	current, err := c.backend.ReadAll()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Cannot read clipboard, leaving it untouched")
	case current != c.copied:
		log.Debug().Msg("Clipboard changed since copy, not clearing")
	default:
		if err := c.backend.WriteAll(""); err != nil {
			log.Warn().Err(err).Msg("Failed to clear clipboard")
		} else {
			log.Info().Msg("Clipboard cleared")
		}
	}
	c.cancelLocked()
}
