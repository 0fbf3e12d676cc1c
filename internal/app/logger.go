package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-reminders/internal/config"
)

const serviceName = "todo-reminders"

var globalLogger zerolog.Logger

var envLogLevels = map[string]zerolog.Level{
	config.EnvDev:   zerolog.DebugLevel,
	config.EnvProd:  zerolog.InfoLevel,
	config.EnvLocal: zerolog.TraceLevel,
}

func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"
	zerolog.DurationFieldUnit = time.Millisecond

	globalLogger = newDefaultLogger(os.Stdout)
	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	env := config.Global().Env

	logger, err := newApplicationLogger(globalLogger, env, os.Stdout)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("env", env).
			Msg("failed to init application logger")
		panic(err)
	}
	zerolog.SetGlobalLevel(logger.GetLevel())

	globalLogger = logger
	globalLogger.Info().
		Str("level", logger.GetLevel().String()).
		Msg("initialized application logger")
}

func newDefaultLogger(out io.Writer) zerolog.Logger {
	return zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Int("pid", os.Getpid()).
		Logger()
}

// newApplicationLogger derives the logger of env from base. Local runs get a
// human readable console output instead of JSON lines.
func newApplicationLogger(base zerolog.Logger, env string, out io.Writer) (zerolog.Logger, error) {
	level, ok := envLogLevels[env]
	if !ok {
		return base, fmt.Errorf("unknown env: %s", env)
	}

	if env == config.EnvLocal {
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.Out = out
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.NoColor = true
		out = consoleWriter
	}

	return base.Output(out).
		Level(level).
		With().
		Str("env", env).
		Logger(), nil
}

func componentLogger(name string) zerolog.Logger {
	return globalLogger.With().
		Str("component", name).
		Logger()
}
