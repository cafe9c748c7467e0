package logger

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

func init() {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}

	globalLogger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "racksumd").
		Caller().
		Logger().
		Level(level)

	log.Logger = globalLogger
}

// SetLevel parses and applies a level name. Unknown names leave the current
// level in place and are reported as a warning.
func SetLevel(name string) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		globalLogger.Warn().Str("level", name).Msg("invalid log level, keeping current level")
		return
	}
	globalLogger = globalLogger.Level(level)
	log.Logger = globalLogger
}

// Get returns the global logger.
func Get() *zerolog.Logger {
	return &globalLogger
}

func Fatal() *zerolog.Event {
	return globalLogger.Fatal()
}

func Error() *zerolog.Event {
	return globalLogger.Error()
}

func Warn() *zerolog.Event {
	return globalLogger.Warn()
}

func Info() *zerolog.Event {
	return globalLogger.Info()
}

func Debug() *zerolog.Event {
	return globalLogger.Debug()
}
