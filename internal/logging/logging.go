// Package logging configures the global zerolog logger used for diagnostics.
// Command results are printed directly; only background events such as
// auto-lock, clipboard clearing, history pruning and sync go through here.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = zerolog.WarnLevel

// ParseLevel converts a level name to a zerolog level. Unknown or empty
// names fall back to DefaultLevel and report ok=false.
func ParseLevel(name string) (level zerolog.Level, ok bool) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return DefaultLevel, true
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return DefaultLevel, false
	}
	return level, true
}

// Setup points the global logger at w with a console format.
func Setup(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()
}
