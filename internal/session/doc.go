// Package session holds the short-lived state around an unlocked vault:
// the idle timer that locks it and the clipboard copy that is cleared after
// a delay.
package session
