package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Locker is implemented by *core.Vault.
type Locker interface {
	Lock()
}

// Session locks the vault after a period without Touch calls.
// The lock runs on the timer goroutine; the vault's own mutex makes this
// safe against concurrent foreground operations.
type Session struct {
	mu      sync.Mutex
	vault   Locker
	timeout time.Duration
	timer   *time.Timer
	expired bool
	stopped bool
}

// New starts an idle session. A timeout of zero disables auto-lock.
func New(vault Locker, timeout time.Duration) *Session {
	s := &Session{vault: vault, timeout: timeout}
	if timeout > 0 {
		s.timer = time.AfterFunc(timeout, s.expire)
	}
	return s
}

func (s *Session) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.expired {
		return
	}
	s.expired = true
	s.vault.Lock()
	log.Info().Dur("idle", s.timeout).Msg("Vault locked after inactivity")
}

// Touch records activity and restarts the idle timer. It returns false
// when the session already expired; the caller must unlock again and
// call Reset.
func (s *Session) Touch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchLocked()
}

func (s *Session) touchLocked() bool {
	if s.expired || s.stopped {
		return false
	}
	if s.timer == nil {
		return true
	}
	if !s.timer.Reset(s.timeout) {
		// Already fired; the pending expire sees expired and returns
		s.timer.Stop()
		s.expired = true
		s.vault.Lock()
		log.Info().Dur("idle", s.timeout).Msg("Vault locked after inactivity")
		return false
	}
	return true
}

// Expired reports whether the idle timer has locked the vault.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

// Reset restarts an expired session after the vault was unlocked again.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.expired = false
	if s.timer != nil {
		s.timer.Reset(s.timeout)
	}
}

// Stop cancels the idle timer without locking the vault.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
