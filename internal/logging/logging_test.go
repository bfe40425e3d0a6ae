package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":       DefaultLevel,
		"debug":  zerolog.DebugLevel,
		" INFO ": zerolog.InfoLevel,
		"error":  zerolog.ErrorLevel,
	}
	for name, want := range cases {
		got, ok := ParseLevel(name)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}

	if got, ok := ParseLevel("loud"); ok || got != DefaultLevel {
		t.Errorf("ParseLevel(loud) = %v, %v", got, ok)
	}
}

func TestSetupFiltersByLevel(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	defer func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	}()

	var buf bytes.Buffer
	Setup(&buf, zerolog.WarnLevel)

	log.Info().Msg("hidden message")
	log.Warn().Str("site", "example.com").Msg("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "example.com") {
		t.Errorf("Warn message missing from output: %q", out)
	}
}
