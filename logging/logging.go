// Package logging wraps the zerolog configuration used by sockvcr.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets console output to stderr and the global level.
func Setup(level string) {
	SetupWithWriter(level, os.Stderr)
}

// SetupWithWriter sets console output to w and the global level.
// Unknown levels default to info.
func SetupWithWriter(level string, w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: zerolog.TimeFieldFormat})
}

// ParseLevel maps a level name to a zerolog level.
// Names are case insensitive. "warning" and "off" are accepted as aliases.
func ParseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))

	switch name {
	case "warning":
		name = zerolog.LevelWarnValue
	case "off":
		name = "disabled"
	}

	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return lvl
}
